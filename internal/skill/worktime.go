package skill

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/itplan/alice-worktime/internal/alice"
	"github.com/itplan/alice-worktime/internal/docflow"
	"github.com/itplan/alice-worktime/internal/prompts"
	"github.com/itplan/alice-worktime/internal/router"
)

// The log-worktime flow: duration -> task -> work type -> description
// -> confirmation -> one persistence write. Each step re-asks itself
// on invalid input instead of dropping the conversation.

func (s *Service) stepWorktimeStart(_ context.Context, _ *Turn) (*alice.OutgoingTurn, error) {
	return alice.NewResponse(textAskMinutes).WithNextHandler(handlerTime), nil
}

func (s *Service) stepTime(_ context.Context, turn *Turn) (*alice.OutgoingTurn, error) {
	minutes, ok := ParseMinutes(turn.In.Utterance())
	if !ok {
		return alice.NewResponse(textMinutesInvalid).WithNextHandler(handlerTime), nil
	}
	if message, valid := ValidateMinutes(minutes); !valid {
		return alice.NewResponse(message).WithNextHandler(handlerTime), nil
	}
	return alice.NewResponse(textAskTask).
		WithNextHandler(handlerTask).
		WithData(worktimeState{Minutes: minutes}), nil
}

func (s *Service) stepTask(ctx context.Context, turn *Turn) (*alice.OutgoingTurn, error) {
	var state worktimeState
	if !decodeState(turn.In.State.Session.Data, &state) || state.Minutes <= 0 {
		return withMenuButtons(alice.NewResponse(textRestart)), nil
	}

	// The task list feeds resolution and the work-type list feeds the
	// next prompt's buttons; both reads are independent, so they share
	// one backend session and run concurrently.
	var (
		tasks     []docflow.Task
		workTypes []docflow.WorkType
	)
	err := s.backend.WithSession(ctx, func(ctx context.Context) error {
		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			var err error
			tasks, err = s.backend.Tasks(groupCtx, turn.Auth.UserID)
			return err
		})
		group.Go(func() error {
			var err error
			workTypes, err = s.cachedWorkTypes(groupCtx)
			return err
		})
		return group.Wait()
	})
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return withMenuButtons(alice.NewResponse(textNoTasks)), nil
	}

	taskID, err := s.resolve.Resolve(ctx, nsTasks, taskCandidates(tasks), turn.In.Utterance())
	if err != nil {
		return nil, err
	}
	if taskID == "" {
		// The backend keeps its own name index; give it the last word
		// before asking the user to repeat.
		if task, err := s.backend.TaskByName(ctx, turn.Auth.UserID, turn.In.Utterance()); err == nil && task.ID != "" {
			taskID = task.ID
		} else if err != nil && !errors.Is(err, docflow.ErrNotFound) {
			return nil, err
		}
	}
	if taskID == "" {
		return alice.NewResponse(textTaskRetry).
			WithNextHandler(handlerTask).
			WithData(state), nil
	}

	state.TaskID = taskID
	response := alice.NewResponse(textAskWorkType).
		WithNextHandler(handlerWorkType).
		WithData(state)
	for i, workType := range workTypes {
		if i == 5 {
			break
		}
		response.WithButton(workType.Name, true)
	}
	return response, nil
}

func (s *Service) stepWorkType(ctx context.Context, turn *Turn) (*alice.OutgoingTurn, error) {
	var state worktimeState
	if !decodeState(turn.In.State.Session.Data, &state) || state.TaskID == "" {
		return withMenuButtons(alice.NewResponse(textRestart)), nil
	}

	workTypes, err := s.cachedWorkTypes(ctx)
	if err != nil {
		return nil, err
	}
	workTypeID, err := s.resolve.Resolve(ctx, nsWorkTypes, workTypeCandidates(workTypes), turn.In.Utterance())
	if err != nil {
		return nil, err
	}
	if workTypeID == "" {
		return alice.NewResponse(textWorkTypeRetry).
			WithNextHandler(handlerWorkType).
			WithData(state), nil
	}

	state.WorkTypeID = workTypeID
	return alice.NewResponse(textAskDescription).
		WithNextHandler(handlerDescription).
		WithData(state), nil
}

func (s *Service) stepDescription(ctx context.Context, turn *Turn) (*alice.OutgoingTurn, error) {
	var state worktimeState
	if !decodeState(turn.In.State.Session.Data, &state) || state.WorkTypeID == "" {
		return withMenuButtons(alice.NewResponse(textRestart)), nil
	}

	description := turn.In.Utterance()
	corrected, err := s.model.Complete(ctx, s.prompts.Get(prompts.PunctuationSystem), description)
	if err != nil {
		// The correction pass is cosmetic; a model outage must not
		// block the booking.
		s.logger.Warn("punctuation pass failed", "error", err)
		corrected = description
	}

	state.Description = corrected
	return alice.NewResponse(corrected+"\n\n"+textConfirmQuestion).
		WithNextHandler(handlerConfirm).
		WithData(state).
		WithButton(buttonYes, true).
		WithButton(buttonNo, true), nil
}

func (s *Service) stepConfirm(ctx context.Context, turn *Turn) (*alice.OutgoingTurn, error) {
	var state worktimeState
	if !decodeState(turn.In.State.Session.Data, &state) || state.Description == "" {
		return withMenuButtons(alice.NewResponse(textRestart)), nil
	}

	switch {
	case isConfirmation(turn.In):
		record := docflow.Record{
			TaskID:      state.TaskID,
			UserID:      turn.Auth.UserID,
			WorkTypeID:  state.WorkTypeID,
			DateTime:    s.now().In(turn.Location()),
			Minutes:     state.Minutes,
			Description: state.Description,
		}
		if err := s.backend.AddWorkTime(ctx, record); err != nil {
			return nil, err
		}
		return alice.NewResponse(textWorktimeRecorded), nil
	case isRejection(turn.In):
		state.Description = ""
		return alice.NewResponse(textDescribeAgain).
			WithNextHandler(handlerDescription).
			WithData(state), nil
	default:
		return alice.NewResponse(textConfirmRetry).
			WithNextHandler(handlerConfirm).
			WithData(state).
			WithButton(buttonYes, true).
			WithButton(buttonNo, true), nil
	}
}

func isConfirmation(turn *alice.IncomingTurn) bool {
	if turn.HasIntent("YANDEX.CONFIRM") {
		return true
	}
	return router.NormalizeCommand(turn.Request.Command) == "да"
}

func isRejection(turn *alice.IncomingTurn) bool {
	if turn.HasIntent("YANDEX.REJECT") {
		return true
	}
	return router.NormalizeCommand(turn.Request.Command) == "нет"
}
