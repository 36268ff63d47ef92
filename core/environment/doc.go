// Package environment generates the weather seen by one simulation run.
//
// Seasons follow a cyclic Calendar and depend only on the elapsed day. Wind
// intensity and water flow are drawn per timestep from bounded
// distributions. Every call to Generate owns its random source, built from
// an explicit seed, so runs can execute in parallel and be replayed.
package environment
