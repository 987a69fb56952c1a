/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package webfront

// await blocks the calling goroutine until fn delivers its single
// result through the completion it is handed. Every Controller action
// posts its completion onto the scheduler (spec.md §4.C6 step 3) to
// keep dispatch off the lock-holding goroutine; but a gin handler
// must write its response before ServeHTTP returns, so the per-request
// goroutine here just waits for that one delivery rather than letting
// it race the handler's return. Grounded on the same
// callback-to-channel shape controller_test.go's await helper uses to
// synchronize on scheduler-routed completions.
func await[T any](fn func(func(T, error))) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	fn(func(v T, err error) { ch <- result{v, err} })
	r := <-ch
	return r.v, r.err
}
