// Package dynamica implements the event-driven simulation core of a
// hard-particle molecular dynamics engine: the event sorter, the
// scheduler, the cellular neighbour list, the Liouvillean streaming and
// collision predictors, and the boundary-condition abstractions that tie
// them together.
//
// The engine advances a system of particles by repeatedly popping the
// earliest pending event from the Sorter, dispatching it to the right
// handler, and regenerating the events of whichever particles were
// touched. There is no fixed time-step loop; time only ever moves
// forward to the next discrete event.
package dynamica
