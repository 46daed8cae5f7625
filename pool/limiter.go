package pool

// limiter bounds the number of live workers. A nil limiter means no limit.
type limiter chan struct{}

func (l limiter) limit() int {
	return cap(l)
}

func (l limiter) release() {
	if l != nil {
		<-l
	}
}
