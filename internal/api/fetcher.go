package api

import (
	"context"
	"errors"
	"log/slog"
	"persons-admin/internal/model"
	"persons-admin/internal/notify"
)

const (
	connectionErrorTitle       = "Connection Error"
	connectionErrorDescription = "An error occurred while fetching data. Please try again later"
)

type Lister interface {
	ListPersons(ctx context.Context, req model.GridRequest) (model.GridResponse, error)
}

// PageFetcher turns every list failure into an empty page plus one
// notification. It never returns an error.
type PageFetcher struct {
	lister   Lister
	notifier notify.Notifier
}

func NewPageFetcher(lister Lister, notifier notify.Notifier) *PageFetcher {
	return &PageFetcher{lister: lister, notifier: notify.Or(notifier)}
}

func (f *PageFetcher) FetchPage(ctx context.Context, req model.GridRequest) model.GridResponse {
	resp, err := f.lister.ListPersons(ctx, req)
	if err == nil {
		if resp.Rows == nil {
			resp.Rows = []model.Person{}
		}
		return resp
	}

	// A superseded fetch is cancelled on purpose.
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		slog.Debug("FetchPage cancelled", "query", CanonicalQuery(req))
		return model.EmptyResponse()
	}

	slog.Error("FetchPage fetch err", "error", err, "query", CanonicalQuery(req))
	f.notifier.Notify(notify.Notification{
		Title:       connectionErrorTitle,
		Description: connectionErrorDescription,
		Action: &notify.Action{
			Label:   "Ok",
			OnClick: func() { slog.Debug("Connection error acknowledged") },
		},
	})
	return model.EmptyResponse()
}
