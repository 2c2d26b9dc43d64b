package gmailapi

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const user = "me"

var ErrNoToken = errors.New("no google token in session")

type MailStatus struct {
	Connected bool
	Email     string
}

// Message holds the header fields the assistant formats into context text.
type Message struct {
	ID      string
	From    string
	Subject string
	Date    string
	Snippet string
}

type IGmail interface {
	Status(ctx context.Context, token *oauth2.Token) (MailStatus, error)
	Search(ctx context.Context, token *oauth2.Token, query string, maxResults int64) ([]Message, error)
}

type gmailClient struct{}

func New() IGmail {
	return &gmailClient{}
}

func (g *gmailClient) service(ctx context.Context, token *oauth2.Token) (*gmail.Service, error) {
	if token == nil || token.AccessToken == "" {
		return nil, ErrNoToken
	}

	src := oauth2.StaticTokenSource(token)
	return gmail.NewService(ctx, option.WithTokenSource(src))
}

func (g *gmailClient) Status(ctx context.Context, token *oauth2.Token) (MailStatus, error) {
	srv, err := g.service(ctx, token)
	if err != nil {
		return MailStatus{}, err
	}

	profile, err := srv.Users.GetProfile(user).Do()
	if err != nil {
		return MailStatus{}, err
	}

	return MailStatus{Connected: true, Email: profile.EmailAddress}, nil
}

func (g *gmailClient) Search(ctx context.Context, token *oauth2.Token, query string, maxResults int64) ([]Message, error) {
	srv, err := g.service(ctx, token)
	if err != nil {
		return nil, err
	}

	list, err := srv.Users.Messages.List(user).Q(query).MaxResults(maxResults).Do()
	if err != nil {
		return nil, err
	}

	var messages []Message
	for _, ref := range list.Messages {
		msg, err := srv.Users.Messages.Get(user, ref.Id).
			Format("metadata").
			MetadataHeaders("From", "Subject", "Date").
			Do()
		if err != nil {
			// Skip the one unreadable message; the rest still make context.
			continue
		}

		m := Message{ID: msg.Id, Snippet: msg.Snippet}
		if msg.Payload != nil {
			for _, header := range msg.Payload.Headers {
				switch header.Name {
				case "From":
					m.From = header.Value
				case "Subject":
					m.Subject = header.Value
				case "Date":
					m.Date = header.Value
				}
			}
		}
		messages = append(messages, m)
	}

	return messages, nil
}
