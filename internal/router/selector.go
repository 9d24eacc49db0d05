package router

// Sequence replays fixed indices modulo n, cycling when exhausted.
func Sequence(indices ...int) Selector {
	i := 0
	return func(n int) int {
		if len(indices) == 0 {
			return 0
		}
		v := indices[i%len(indices)]
		i++
		return ((v % n) + n) % n
	}
}
