// Package repl runs the interactive gamesvc shell.
//
// Every line is split into arguments and handed to an Executor, so one
// set of services serves the whole session: buffered events, cached
// achievements and pending conflicts survive between commands. History
// persists to a file between sessions.
package repl
