// Package status keeps the dashboard's view of backend state current.
//
// A Poller fetches GET /status once a second and publishes each decoded
// Snapshot to a Store. Readers (the terminal dashboard, the watch command)
// take the current snapshot from the Store and re-render whenever Updates
// fires.
//
//	client := backend.NewClient(baseURL, status.DefaultRequestTimeout)
//	store := status.NewStore()
//	poller := status.NewPoller(client, store, status.DefaultInterval, 0)
//	if err := poller.Start(ctx); err != nil {
//	    return err
//	}
//	defer poller.Stop()
//
// # Failures
//
// A failed poll never clears the last good snapshot. It only records an
// error, which the Store exposes as a banner message until the next
// successful poll replaces the snapshot and clears it.
//
// # Overlap
//
// Only one fetch runs at a time. Ticks that fire during a slow fetch are
// skipped and counted in Stats. A Trigger issued during a fetch runs one
// extra fetch after it completes.
package status
