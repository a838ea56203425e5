// logger.go records every completion request and its outcome.
//
// Entries go to the zap logger given to NewClient, which the application
// points at ~/.paidata/logs/app.log. The credential is never logged.

package ai

import (
	"time"

	"go.uber.org/zap"
)

// maxLoggedQuestion bounds the question text copied into a log entry.
const maxLoggedQuestion = 500

func logRequest(log *zap.Logger, protocol string, req CompletionRequest) {
	log.Info("ai request",
		zap.String("category", "AI"),
		zap.String("protocol", protocol),
		zap.String("model", req.Model),
		zap.Float64("temperature", req.Temperature),
		zap.Int("max_tokens", req.MaxTokens),
		zap.Int("prompt_chars", len([]rune(req.Conversation.User.Content))),
		zap.String("question", truncate(req.Question, maxLoggedQuestion)),
	)
}

func logResult(log *zap.Logger, protocol string, res Result, elapsed time.Duration) {
	fields := []zap.Field{
		zap.String("category", "AI"),
		zap.String("protocol", protocol),
		zap.Duration("elapsed", elapsed),
	}
	if f, failed := res.Failure(); failed {
		log.Warn("ai failure", append(fields,
			zap.Stringer("kind", f.Kind),
			zap.String("detail", f.Detail),
		)...)
		return
	}
	answer, _ := res.Answer()
	log.Info("ai answer", append(fields, zap.Int("answer_chars", len([]rune(answer))))...)
}
