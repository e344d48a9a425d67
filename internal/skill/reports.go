package skill

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/itplan/alice-worktime/internal/alice"
	"github.com/itplan/alice-worktime/internal/docflow"
	"github.com/itplan/alice-worktime/internal/prompts"
)

// Paginated reads: task list, daily report, project worktime Q&A.

const (
	sourceTasks   = "tasks"
	sourceDaily   = "daily"
	sourceProject = "project"
)

func (s *Service) stepTaskList(ctx context.Context, turn *Turn) (*alice.OutgoingTurn, error) {
	tasks, err := s.backend.Tasks(ctx, turn.Auth.UserID)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return withMenuButtons(alice.NewResponse(textNoTasks)), nil
	}
	lines := make([]string, 0, len(tasks))
	for i, task := range tasks {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, task.Name))
	}
	return paginated(lines, taskPageSize, sourceTasks), nil
}

func (s *Service) stepDailyReport(ctx context.Context, turn *Turn) (*alice.OutgoingTurn, error) {
	today := s.now().In(turn.Location())
	entries, err := s.backend.WorkTimeByUser(ctx, turn.Auth.UserID, today)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return withMenuButtons(alice.NewResponse(textNoWorkTime)), nil
	}
	return paginated(entryLines(entries), dailyPageSize, sourceDaily), nil
}

func (s *Service) stepProjectAsk(_ context.Context, _ *Turn) (*alice.OutgoingTurn, error) {
	return alice.NewResponse(textProjectAsk).WithNextHandler(handlerProject), nil
}

// stepProject answers "what was done on the project": a model summary
// of the recorded descriptions, with the raw entries browsable behind
// it.
func (s *Service) stepProject(ctx context.Context, turn *Turn) (*alice.OutgoingTurn, error) {
	project, err := s.backend.ProjectByName(ctx, turn.In.Utterance())
	if err != nil {
		if errors.Is(err, docflow.ErrNotFound) {
			return alice.NewResponse(textProjectRetry).WithNextHandler(handlerProject), nil
		}
		return nil, err
	}

	var entries []docflow.WorkTimeEntry
	err = s.backend.WithSession(ctx, func(ctx context.Context) error {
		entries, err = s.backend.WorkTimeByProject(ctx, project.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return withMenuButtons(alice.NewResponse(textNoWorkTime)), nil
	}

	descriptions := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Description) != "" {
			descriptions = append(descriptions, entry.Description)
		}
	}
	summary, err := s.model.Complete(ctx, s.prompts.Get(prompts.SummarySystem), strings.Join(descriptions, "\n"))
	if err != nil {
		return nil, fmt.Errorf("project summary: %w", err)
	}

	lines := entryLines(entries)
	response := paginated(lines, projectPageSize, sourceProject)
	response.Response.Text = summary + "\n\n" + response.Response.Text
	return response, nil
}

func entryLines(entries []docflow.WorkTimeEntry) []string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		line := fmt.Sprintf("%s — %d мин.", entry.TaskName, entry.Minutes)
		if strings.TrimSpace(entry.Description) != "" {
			line += " " + entry.Description
		}
		lines = append(lines, line)
	}
	return lines
}
