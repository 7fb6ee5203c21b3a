// Package stimulus provides injected-current protocols.
//
// A stimulus implements [dynamo.Stimulus] and returns a one-element input
// holding the injected current in nA:
//
//   - [None]: no injection
//   - [Constant]: a fixed current
//   - [Pulse]: a rectangular pulse train
//   - [Manual]: a current set from outside the simulation loop
package stimulus
