package contacts

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"
)

const (
	selfResource = "people/me"
	personFields = "names,emailAddresses,phoneNumbers"
	pageSize     = 200
)

var ErrNoToken = errors.New("no google token in session")

type Contact struct {
	Name   string
	Emails []string
	Phones []string
}

type IContacts interface {
	Status(ctx context.Context, token *oauth2.Token) (bool, error)
	ListAll(ctx context.Context, token *oauth2.Token) ([]Contact, error)
	FindByName(ctx context.Context, token *oauth2.Token, name string) (*Contact, error)
}

type contactsClient struct{}

func New() IContacts {
	return &contactsClient{}
}

func (c *contactsClient) service(ctx context.Context, token *oauth2.Token) (*people.Service, error) {
	if token == nil || token.AccessToken == "" {
		return nil, ErrNoToken
	}

	src := oauth2.StaticTokenSource(token)
	return people.NewService(ctx, option.WithTokenSource(src))
}

func (c *contactsClient) Status(ctx context.Context, token *oauth2.Token) (bool, error) {
	srv, err := c.service(ctx, token)
	if err != nil {
		return false, err
	}

	if _, err := srv.People.Get(selfResource).PersonFields("names").Do(); err != nil {
		return false, err
	}

	return true, nil
}

func (c *contactsClient) ListAll(ctx context.Context, token *oauth2.Token) ([]Contact, error) {
	srv, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	list, err := srv.People.Connections.List(selfResource).
		PersonFields(personFields).
		PageSize(pageSize).
		Do()
	if err != nil {
		return nil, err
	}

	var result []Contact
	for _, person := range list.Connections {
		contact := fromPerson(person)
		if contact.Name == "" {
			continue
		}
		result = append(result, contact)
	}

	return result, nil
}

// FindByName returns the first contact whose display name contains the given
// name, case-insensitively. A nil result means no match, not an error.
func (c *contactsClient) FindByName(ctx context.Context, token *oauth2.Token, name string) (*Contact, error) {
	all, err := c.ListAll(ctx, token)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, nil
	}

	for _, contact := range all {
		if strings.Contains(strings.ToLower(contact.Name), needle) {
			found := contact
			return &found, nil
		}
	}

	return nil, nil
}

func fromPerson(person *people.Person) Contact {
	var contact Contact

	for _, n := range person.Names {
		if n.DisplayName != "" {
			contact.Name = n.DisplayName
			break
		}
	}
	for _, e := range person.EmailAddresses {
		if e.Value != "" {
			contact.Emails = append(contact.Emails, e.Value)
		}
	}
	for _, p := range person.PhoneNumbers {
		if p.Value != "" {
			contact.Phones = append(contact.Phones, p.Value)
		}
	}

	return contact
}
