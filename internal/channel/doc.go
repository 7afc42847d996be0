// Package channel implements an unbounded, one-directional, single-consumer
// channel.
//
// Send never blocks: messages queue in memory until the receiver takes them,
// in exactly the order they were sent. The sender closing the channel is
// observed by the receiver once the queue is drained.
package channel
