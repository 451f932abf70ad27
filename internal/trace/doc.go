// Package trace records dispatch events.
//
// Every dispatch operation (load, put, send, index, set_index, call) can emit
// one Event to a Recorder. Events are stamped with a logical sequence number
// from a Clock and with the session identifier of the runtime that produced
// them, so a recorded run can be read back in order and compared against a
// golden trace.
package trace
