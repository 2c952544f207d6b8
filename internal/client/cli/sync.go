package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophtodo/internal/client/client"
	"github.com/dmitrijs2005/gophtodo/internal/client/services"
	"github.com/dmitrijs2005/gophtodo/internal/filex"
	"github.com/dmitrijs2005/gophtodo/internal/netx"
)

// Sync reconciles the cache with the server right away.
func (a *App) Sync(ctx context.Context) error {
	n, err := a.syncer.Sync(ctx)
	switch {
	case errors.Is(err, services.ErrSyncInProgress):
		fmt.Fprintln(a.out, "Sync already in progress")
		return nil
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
		return err
	case err != nil:
		return err
	}

	a.setMode(ModeOnline)
	fmt.Fprintf(a.out, "Synced, %d task(s)\n", n)
	return nil
}

// download and writeFile are test seams for saving an export locally.
var (
	download  = netx.DownloadFromPresignedURL
	writeFile = filex.WriteFile
)

// Export asks the server for a snapshot of the task list and prints the
// download link. With a file argument the snapshot is saved there too.
func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return usage("export [file]")
	}
	url, err := a.exporter.Export(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Export ready:", url)
	if len(args) == 0 {
		return nil
	}

	data, err := download(ctx, url)
	if err != nil {
		return fmt.Errorf("export download error: %w", err)
	}
	if err := writeFile(args[0], data); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %d bytes to %s\n", len(data), args[0])
	return nil
}
