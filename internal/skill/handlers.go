package skill

import (
	"context"
	"fmt"
	"strings"

	"github.com/itplan/alice-worktime/internal/alice"
)

func (s *Service) stepRoot(ctx context.Context, turn *Turn) (*alice.OutgoingTurn, error) {
	text := textGreeting
	if turn.Auth.UserID != "" {
		// Linked users get a backlog hint with the greeting; the probe
		// is best-effort and never blocks the welcome.
		if overdue, err := s.backend.OverdueTasks(ctx, turn.Auth.UserID); err != nil {
			s.logger.Warn("overdue probe failed", "error", err)
		} else if len(overdue) > 0 {
			text += "\n\n" + fmt.Sprintf(textOverdueSuffix, len(overdue))
		}
	}
	return withMenuButtons(alice.NewResponse(text)), nil
}

func (s *Service) stepUnknown(_ context.Context, _ *Turn) (*alice.OutgoingTurn, error) {
	return alice.NewResponse(textUnknown).WithButton(buttonHelp, true), nil
}

// stepCancel discards any carried continuation by answering without a
// session_state block.
func (s *Service) stepCancel(_ context.Context, _ *Turn) (*alice.OutgoingTurn, error) {
	return withMenuButtons(alice.NewResponse(textCancel)), nil
}

func (s *Service) stepThanks(_ context.Context, _ *Turn) (*alice.OutgoingTurn, error) {
	return alice.NewResponse(textThanks), nil
}

func (s *Service) stepHelp(_ context.Context, _ *Turn) (*alice.OutgoingTurn, error) {
	return withMenuButtons(alice.NewResponse(textHelp)), nil
}

// stepNextPage serves the next slice of a paginated read. The carried
// page state is the only input: the listing itself already happened.
func (s *Service) stepNextPage(_ context.Context, turn *Turn) (*alice.OutgoingTurn, error) {
	var page pageState
	if !decodeState(turn.In.State.Session.Data, &page) || page.Source == "" || page.PageSize <= 0 {
		return alice.NewResponse(textNothingMore), nil
	}
	if len(page.Remaining) == 0 {
		return alice.NewResponse(textNothingMore), nil
	}
	return paginated(page.Remaining, page.PageSize, page.Source), nil
}

// paginated renders the first page of lines and carries the remainder,
// if any, for a follow-up "далее".
func paginated(lines []string, pageSize int, source string) *alice.OutgoingTurn {
	if pageSize > len(lines) {
		pageSize = len(lines)
	}
	response := alice.NewResponse(strings.Join(lines[:pageSize], "\n"))
	rest := lines[pageSize:]
	if len(rest) == 0 {
		return response
	}
	return response.
		WithData(pageState{Remaining: rest, PageSize: pageSize, Source: source}).
		PrependButton(buttonNext, true)
}

func withMenuButtons(response *alice.OutgoingTurn) *alice.OutgoingTurn {
	return response.
		WithButton(buttonWorktime, false).
		WithButton(buttonTasks, false).
		WithButton(buttonReport, false).
		WithButton(buttonProject, false)
}
