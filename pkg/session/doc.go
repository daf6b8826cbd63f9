/*
Package session implements the per-user session registry.

Every user that ever sends an event gets a Session holding the current screen,
the active language, the scripting sandbox and the cumulative variable type table.
Sessions live for the whole process: there is no eviction, and Len exposes the
growth so it can be watched. Access to one session is serialized by a per-session
mutex and, optionally, a distributed lock shared by all replicas.
*/
package session
