package genie

import "context"

// Service bundles the client, poller and resolver behind the narrow
// surface the chat layer drives.
type Service struct {
	client *Client
	poller *Poller
}

func NewService(client *Client, poller *Poller) *Service {
	return &Service{client: client, poller: poller}
}

func (s *Service) StartConversation(ctx context.Context, question string) (string, string, error) {
	resp, err := s.client.StartConversation(ctx, question)
	if err != nil {
		return "", "", err
	}
	return resp.ConversationID, resp.MessageID, nil
}

func (s *Service) SendMessage(ctx context.Context, conversationID, question string) (string, error) {
	return s.client.SendMessage(ctx, conversationID, question)
}

func (s *Service) Await(ctx context.Context, conversationID, messageID string) (*Message, error) {
	return s.poller.WaitForCompletion(ctx, s.client, conversationID, messageID)
}

func (s *Service) Resolve(ctx context.Context, conversationID, messageID string, msg *Message) (*Answer, error) {
	return Resolve(ctx, s.client, conversationID, messageID, msg)
}
