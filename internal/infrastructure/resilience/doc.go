/*
Package resilience provides a consecutive-failure circuit breaker used to
shield remote archive and catalog fetches.

# States

	Closed --[Threshold failures]--> Open --[Cooldown]--> Half-Open
	  ^                                                       |
	  +----------------[probe succeeds]-----------------------+
	                    [probe fails] -> Open

Only one probe runs while half-open; concurrent callers get ErrCircuitOpen.

# Usage

	breaker := resilience.New("catalog", resilience.Settings{
		Threshold: 5,
		Cooldown:  30 * time.Second,
	})
	err := breaker.Do(func() error {
		return fetch(ctx)
	})
*/
package resilience
