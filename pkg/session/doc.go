/*
Package session serializes structural mutations of stories.

Story edits follow a load, mutate, save cycle. The Manager guarantees that cycle runs
exclusively per story, combining an in-process mutex with an optional distributed
locker so several replicas can share one store.
*/
package session
