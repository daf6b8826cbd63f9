/*
Package sandbox implements the per-session scripting context on top of an embedded Lua VM.

A Sandbox exposes only the Lua base library, minus the functions that reach the host
(dofile, loadfile, print, require). Screen scripts use it to keep quest state in global
variables, which the engine later reads by name to fill placeholders in screen text.
*/
package sandbox
