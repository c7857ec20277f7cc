package notifier

import (
	"log/slog"

	"github.com/amishk599/offerhound/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes new offers to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each offer via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each offer with company, title, location, URL, source, and posted_at.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(offers []model.Offer) error {
	for _, o := range offers {
		args := []any{"company", o.Company, "title", o.Title, "location", o.Location, "url", o.JobURL, "source", o.Source}
		if o.PostedAt != nil {
			args = append(args, "posted_at", *o.PostedAt)
		}
		n.logger.Info("new offer", args...)
	}
	return nil
}
