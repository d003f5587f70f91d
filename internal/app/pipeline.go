package app

import (
	"context"
	"fmt"
	"runtime/debug"

	"voiceinput/internal/record"
)

// pipeline transcribes and injects closed sessions one at a time, in the
// order they were recorded.
func (s *Service) pipeline(ctx context.Context) {
	for sess := range s.sessions {
		if ctx.Err() != nil {
			s.log.Info("shutting down, recording not transcribed", "session", sess.ID)
			continue
		}
		s.process(ctx, sess)
	}
}

func (s *Service) process(ctx context.Context, sess *record.Session) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("pipeline panic", "session", sess.ID, "panic", r, "stack", string(debug.Stack()))
			s.deps.Feedback.Failed(fmt.Errorf("internal error: %v", r))
		}
	}()

	s.deps.Feedback.Transcribing()
	tctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout())
	res, err := s.deps.Transcriber.Transcribe(tctx, sess.Buffer)
	cancel()
	s.archive(sess.Buffer, res, err)
	if err != nil {
		s.report(err)
		return
	}

	if res.Text == "" {
		s.log.Info("nothing recognised", "session", sess.ID)
		s.deps.Feedback.NothingRecognised()
		return
	}

	if err := s.deps.Injector.Inject(ctx, res.Text); err != nil {
		s.report(err)
		return
	}
	s.log.Info("typed", "session", sess.ID, "chars", len([]rune(res.Text)))
	s.deps.Feedback.Typed(res.Text)
}
