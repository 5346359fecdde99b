package gmail

import (
	"context"
	"fmt"
	"log"
	"time"

	gmaildomain "campushub-backend/internal/gmail/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Scope is read-only: the pipeline only ever lists and reads messages.
var scopes = []string{gmail.GmailReadonlyScope}

// Service talks to the Gmail REST API on behalf of a connected user.
// It implements usecase.MailProvider.
type Service struct {
	clientID     string
	clientSecret string
	redirectURI  string
}

func NewService(clientID, clientSecret, redirectURI string) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
	}
}

func (s *Service) Configured() bool {
	return s.clientID != "" && s.clientSecret != ""
}

func (s *Service) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		RedirectURL:  s.redirectURI,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}
}

// AuthCodeURL builds the consent URL. offline + consent forces Google to
// return a refresh token even on re-authorization.
func (s *Service) AuthCodeURL(state string) string {
	return s.oauthConfig().AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

func (s *Service) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.oauthConfig().Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("unable to exchange authorization code: %v", err)
	}
	return token, nil
}

// Refresh performs a refresh-token exchange. The returned token may carry an
// empty RefreshToken; callers keep the stored one in that case.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	src := s.oauthConfig().TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("unable to refresh access token: %v", err)
	}
	return token, nil
}

func (s *Service) gmailService(ctx context.Context, token *oauth2.Token) (*gmail.Service, error) {
	srv, err := gmail.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(token)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}
	return srv, nil
}

// ListUnreadInbox returns the ids of up to max unread inbox messages, in the
// order Gmail returns them.
func (s *Service) ListUnreadInbox(ctx context.Context, token *oauth2.Token, max int64) ([]string, error) {
	srv, err := s.gmailService(ctx, token)
	if err != nil {
		return nil, err
	}

	resp, err := srv.Users.Messages.List("me").
		Q("in:inbox is:unread").
		MaxResults(max).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list messages: %v", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// GetMessage fetches one message's From/Subject headers and internal date.
// Metadata format avoids pulling the body.
func (s *Service) GetMessage(ctx context.Context, token *oauth2.Token, id string) (*gmaildomain.MailMessage, error) {
	srv, err := s.gmailService(ctx, token)
	if err != nil {
		return nil, err
	}

	msg, err := srv.Users.Messages.Get("me", id).
		Format("metadata").
		MetadataHeaders("From", "Subject").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve message: %v", err)
	}

	out := &gmaildomain.MailMessage{ID: msg.Id}
	if msg.Payload != nil {
		out.FromHeader = getHeader(msg.Payload.Headers, "From")
		out.Subject = getHeader(msg.Payload.Headers, "Subject")
	}
	if msg.InternalDate > 0 {
		out.InternalDate = time.UnixMilli(msg.InternalDate)
	}
	return out, nil
}

// Watch sets up push notifications for the user's inbox. Any existing watch
// is stopped first to avoid Gmail's one-client-per-user limit.
func (s *Service) Watch(ctx context.Context, token *oauth2.Token, topicName string) error {
	srv, err := s.gmailService(ctx, token)
	if err != nil {
		return err
	}

	_ = srv.Users.Stop("me").Context(ctx).Do()

	req := &gmail.WatchRequest{
		TopicName: topicName,
		LabelIds:  []string{"INBOX"},
	}
	resp, err := srv.Users.Watch("me", req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to watch mailbox: %v", err)
	}
	log.Printf("[Gmail] Watch started. Expiration: %d, HistoryId: %d", resp.Expiration, resp.HistoryId)
	return nil
}

func getHeader(headers []*gmail.MessagePartHeader, name string) string {
	for _, header := range headers {
		if header.Name == name {
			return header.Value
		}
	}
	return ""
}
