// Package client ties the execution core together for endpoint methods:
// cache lookup by deterministic fingerprint, retry orchestration behind
// a shared circuit breaker, schema validation of results, and error
// wrapping with request context.
//
// Endpoint methods stay thin; they supply a method name, parameters, a
// remote-call thunk, and an optional schema check:
//
//	repo, err := client.Do(ctx, c, client.CallSpec[*Repo]{
//	    Method: "getRepository",
//	    Params: map[string]any{"owner": owner, "repo": name},
//	    Call: func(ctx context.Context) (*Repo, error) {
//	        return api.fetchRepo(ctx, owner, name)
//	    },
//	    Validate: func(r *Repo) error {
//	        if r.FullName == "" {
//	            return fmt.Errorf("missing full_name")
//	        }
//	        return nil
//	    },
//	})
//
// The client does not know HTTP or GraphQL specifics; the thunk is
// issued exactly as given and is expected to fail with a shape the
// errors package can classify.
package client
