// Package reconcile runs the full session pipeline over in-memory recordings:
// every recording is deduplicated on its own worker, the results are joined
// by input position, and the timeline merger produces one transcript.
//
// A recording that cannot be deduplicated (for example because its segments
// are not sorted) is excluded and reported in Diagnostics; the rest of the
// session is still merged. Only an empty input, invalid parameters or a
// cancelled context fail the whole call.
//
//	res, err := reconcile.Reconcile(ctx, recs, reconcile.Options{Dedup: dedup.DefaultParams()})
//	if res.Diagnostics.HasIssues() {
//	    fmt.Println(res.Diagnostics.Summary())
//	}
package reconcile
