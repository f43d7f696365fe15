package cli

import (
	"context"
	"strconv"

	"github.com/dmitrijs2005/mediavault/internal/client/models"
)

func (a *App) ownerID() string {
	if u := a.currentUser(); u != nil {
		return u.ID
	}
	return ""
}

func (a *App) List(ctx context.Context) error {
	items, cached, err := a.entryService.List(ctx, a.ownerID())
	if err != nil {
		return err
	}
	if cached {
		a.setMode(ModeOffline)
		printlnFn("(server unavailable, showing cached list)")
	}
	if len(items) == 0 {
		printlnFn("No files yet")
		return nil
	}
	for _, item := range items {
		printlnFn(item.String())
	}
	return nil
}

func (a *App) Upload(ctx context.Context, path string) error {
	description, err := getSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}
	private, err := GetYesNo(a.reader, "Private?", true, a.out)
	if err != nil {
		return err
	}

	e, err := a.entryService.Upload(ctx, a.ownerID(), path, description, private)
	if err != nil {
		return err
	}
	printlnFn("Uploaded", e.OriginalName, "as", e.ID)
	return nil
}

func printEntry(e *models.Entry) {
	printlnFn("id:         ", e.ID)
	printlnFn("name:       ", e.OriginalName)
	printlnFn("type:       ", e.MimeType)
	printlnFn("size:       ", models.HumanSize(e.SizeBytes))
	printlnFn("private:    ", strconv.FormatBool(e.IsPrivate))
	printlnFn("uploaded:   ", e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	printlnFn("path:       ", e.StoragePath)
	if d := e.DescriptionText(); d != "" {
		printlnFn("description:", d)
	}
}

func (a *App) Show(ctx context.Context, id string) error {
	e, cached, err := a.entryService.Get(ctx, a.ownerID(), id)
	if err != nil {
		return err
	}
	if cached {
		a.setMode(ModeOffline)
		printlnFn("(server unavailable, showing cached entry)")
	}
	printEntry(e)
	return nil
}

func (a *App) Download(ctx context.Context, id, dest string) error {
	path, n, err := a.entryService.Download(ctx, id, dest)
	if err != nil {
		return err
	}
	printlnFn("Saved", models.HumanSize(n), "to", path)
	return nil
}

func (a *App) Describe(ctx context.Context, id string) error {
	description, err := getSimpleText(a.reader, "New description (empty to clear)", a.out)
	if err != nil {
		return err
	}
	e, err := a.entryService.Describe(ctx, a.ownerID(), id, description)
	if err != nil {
		return err
	}
	printEntry(e)
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.entryService.Delete(ctx, a.ownerID(), id); err != nil {
		return err
	}
	printlnFn("Deleted", id)
	return nil
}
