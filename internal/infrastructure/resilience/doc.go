/*
Package resilience provides the circuit breaker guarding the session
provider API.

# Overview

Provisioning a remote browser takes several upstream calls in a row. When
the provider degrades, the breaker fails those calls fast instead of letting
every incoming request wait out a full connection timeout.

# Usage

	breaker := resilience.New("browserbase", resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to resilience.State) {
			log.Printf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	err := breaker.Do(func() error {
		return client.Call()
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
