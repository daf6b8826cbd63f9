/*
Package ports defines the driven ports (interfaces) of the quest engine.

These interfaces decouple the core logic from concrete implementations, allowing
the engine to work with different scripting runtimes, lock backends and transports.

# Key Interfaces

  - Sandbox: An isolated scripting context holding a session's quest variables.
  - DistributedLocker: Serializes access to one session across replicas.
  - Dispatcher: Delivers a rendered reply to the user.
*/
package ports
