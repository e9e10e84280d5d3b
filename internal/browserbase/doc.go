/*
Package browserbase is the REST client for the Browserbase session API.

# Overview

The client covers the lifecycle calls the service needs: create a session,
inspect it, request its release, and fetch the live view (debug) links.
Calls are rate limited and routed through a circuit breaker; lifecycle
calls are never retried because a duplicated create leaks a paid session.

# Usage

	client := browserbase.NewClient(cfg.Browserbase, logger, metrics)

	sess, err := client.CreateSession(ctx, browserbase.CreateSessionRequest{
		Region:    "us-east-1",
		KeepAlive: true,
		Timeout:   600,
	})
	if err != nil {
		return err
	}
	defer client.ReleaseSession(ctx, sess.ID)

	links, err := client.Debug(ctx, sess.ID)
*/
package browserbase
