// Package progress maps heterogeneous queue status events onto a monotonic
// 0-100 progress scale for host notifications.
package progress

import (
	"fmt"
	"math"
	"strings"

	"github.com/tsubasakong/mcp-hfspace/src/gradio"
)

// Notification is one progress update ready to emit to the host.
type Notification struct {
	Progress int
	Total    int
	Message  string
}

// Notifier estimates call progress from status events. One instance per
// call; never share across concurrent calls.
type Notifier struct {
	last int
}

// NewNotifier returns a notifier starting at zero progress.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Update folds one status event into the estimate and returns the
// notification to emit. Emitted progress never decreases, ends at 100 only
// on a complete stage, and nudges forward past 75% so a stalled remote
// does not look frozen.
func (n *Notifier) Update(status *gradio.StatusUpdate) Notification {
	progress := n.estimate(status)

	if progress < n.last {
		progress = n.last
	}
	if status.Stage == gradio.StageComplete {
		progress = 100
	} else if progress == n.last && n.last >= 75 && progress < 99 {
		progress++
	}
	n.last = progress

	return Notification{
		Progress: progress,
		Total:    100,
		Message:  message(status),
	}
}

// estimate computes raw progress for one event: step data maps onto the
// 10-90 band, otherwise the stage heuristic applies.
func (n *Notifier) estimate(status *gradio.StatusUpdate) int {
	if len(status.Progress) > 0 {
		p := status.Progress[0]
		if p.Length > 1 {
			return int(math.Round(10 + float64(p.Index)/float64(p.Length-1)*80))
		}
	}
	switch status.Stage {
	case gradio.StagePending:
		switch {
		case status.Queue && status.Position == 0:
			return 10
		case status.Queue && status.Position > 0:
			return 5
		default:
			return 15
		}
	case gradio.StageGenerating:
		return 50
	case gradio.StageComplete:
		return 100
	}
	// error stage holds the last value
	return n.last
}

// message derives a human-readable line when the event itself carries none.
func message(status *gradio.StatusUpdate) string {
	if status.Message != "" {
		return status.Message
	}
	if status.Queue && status.Position >= 0 {
		return fmt.Sprintf("Queued at position %d", status.Position)
	}
	if len(status.Progress) > 0 {
		p := status.Progress[0]
		if p.Desc != "" {
			return p.Desc
		}
		return fmt.Sprintf("Step %d of %d", p.Index+1, p.Length)
	}
	return capitalize(string(status.Stage))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
