package agent

import (
	"context"
	"errors"
)

// ModelClient 定义模型客户端接口。Stream 按文本增量回调 onDelta。
type ModelClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
	Stream(ctx context.Context, prompt Prompt, onDelta func(string)) error
}

// EchoClient is a fallback when no API key is available.
type EchoClient struct {
	Prefix string
}

var _ ModelClient = EchoClient{}

func (c EchoClient) Complete(_ context.Context, prompt Prompt) (string, error) {
	if len(prompt.Messages) == 0 {
		return "", errors.New("no messages to echo")
	}
	last := prompt.Messages[len(prompt.Messages)-1]
	return c.Prefix + last.Content, nil
}

func (c EchoClient) Stream(ctx context.Context, prompt Prompt, onDelta func(string)) error {
	text, err := c.Complete(ctx, prompt)
	if err != nil {
		return err
	}
	onDelta(text)
	return nil
}
