/*
Package resilience provides the circuit breaker that guards REST calls.

	breaker := resilience.New("chat-api", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsFailure: func(err error) bool {
			return err != nil && !errors.Is(err, api.ErrNotFound)
		},
	})

	err := breaker.Execute(func() error {
		return call()
	})

States move Closed -> Open after ReadyToTrip, Open -> Half-Open once
Timeout elapses, and Half-Open -> Closed after MaxRequests consecutive
successes. A failure while half-open reopens the breaker. OnStateChange
runs outside the breaker lock.
*/
package resilience
