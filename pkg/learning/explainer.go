package learning

import (
	"context"

	"ai-study-assist-be/pkg/assist"
)

// Explainer adapts the client to the assist session.
type Explainer struct {
	Client *Client
}

var _ assist.Explainer = Explainer{}

func (e Explainer) Explain(ctx context.Context, req assist.ExplainRequest) (string, error) {
	var history []ChatMessage
	if req.Kind == assist.KindChat {
		history = make([]ChatMessage, len(req.History))
		for i, turn := range req.History {
			history[i] = ChatMessage{Role: string(turn.Role), Content: turn.Content}
		}
	}
	return e.Client.Explain(ctx, ExplainRequest{
		Text:        req.Text,
		CourseID:    req.CourseID,
		Mode:        string(req.Kind),
		ChatHistory: history,
	})
}
