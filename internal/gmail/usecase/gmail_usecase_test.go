package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	gmaildomain "campushub-backend/internal/gmail/domain"
	"campushub-backend/internal/gmail/repository"

	"golang.org/x/oauth2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupGmailTestDB creates a test database backed by sqlite
func setupGmailTestDB(t *testing.T) (*gorm.DB, func()) {
	tempDir, err := os.MkdirTemp("", "gmail_usecase_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(tempDir, "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to open database: %v", err)
	}

	db.AutoMigrate(&gmaildomain.GmailCredential{}, &gmaildomain.WatchedSender{}, &gmaildomain.EmailNotification{})

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		os.RemoveAll(tempDir)
	}

	return db, cleanup
}

// fakeProvider is an in-memory MailProvider
type fakeProvider struct {
	configured   bool
	unreadIDs    []string
	messages     map[string]*gmaildomain.MailMessage
	fetchErr     map[string]error
	listErr      error
	exchangeTok  *oauth2.Token
	refreshTok   *oauth2.Token
	refreshErr   error
	refreshCalls int
	watchCalls   int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		configured: true,
		messages:   make(map[string]*gmaildomain.MailMessage),
		fetchErr:   make(map[string]error),
	}
}

func (p *fakeProvider) addMessage(id, fromHeader, subject string, internalDate time.Time) {
	p.unreadIDs = append(p.unreadIDs, id)
	p.messages[id] = &gmaildomain.MailMessage{
		ID:           id,
		FromHeader:   fromHeader,
		Subject:      subject,
		InternalDate: internalDate,
	}
}

func (p *fakeProvider) Configured() bool { return p.configured }
func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (p *fakeProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if p.exchangeTok == nil {
		return nil, errors.New("invalid code")
	}
	return p.exchangeTok, nil
}

func (p *fakeProvider) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	p.refreshCalls++
	if p.refreshErr != nil {
		return nil, p.refreshErr
	}
	return p.refreshTok, nil
}

func (p *fakeProvider) ListUnreadInbox(ctx context.Context, token *oauth2.Token, max int64) ([]string, error) {
	if p.listErr != nil {
		return nil, p.listErr
	}
	if int64(len(p.unreadIDs)) > max {
		return p.unreadIDs[:max], nil
	}
	return p.unreadIDs, nil
}

func (p *fakeProvider) GetMessage(ctx context.Context, token *oauth2.Token, id string) (*gmaildomain.MailMessage, error) {
	if err, ok := p.fetchErr[id]; ok {
		return nil, err
	}
	msg, ok := p.messages[id]
	if !ok {
		return nil, errors.New("message not found")
	}
	return msg, nil
}

func (p *fakeProvider) Watch(ctx context.Context, token *oauth2.Token, topicName string) error {
	p.watchCalls++
	return nil
}

func setupUsecase(t *testing.T, provider MailProvider) (GmailUsecase, repository.CredentialRepository, repository.NotificationRepository, func()) {
	db, cleanup := setupGmailTestDB(t)
	credRepo := repository.NewCredentialRepository(db)
	senderRepo := repository.NewWatchedSenderRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	uc := NewGmailUsecase(credRepo, senderRepo, notifRepo, provider, "test-secret", "")
	return uc, credRepo, notifRepo, cleanup
}

func connectUser(t *testing.T, credRepo repository.CredentialRepository, userID string, expiry *time.Time) {
	err := credRepo.Upsert(&gmaildomain.GmailCredential{
		UserID:       userID,
		AccessToken:  "access-" + userID,
		RefreshToken: "refresh-" + userID,
		ExpiryDate:   expiry,
	})
	if err != nil {
		t.Fatalf("Failed to store credential: %v", err)
	}
}

func TestSync_NoWatchedSenders(t *testing.T) {
	provider := newFakeProvider()
	uc, credRepo, _, cleanup := setupUsecase(t, provider)
	defer cleanup()

	connectUser(t, credRepo, "u1", nil)

	result, err := uc.Sync(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if result.Synced {
		t.Error("Expected Synced=false with no watched senders")
	}
	if result.NewCount != 0 {
		t.Errorf("Expected NewCount=0, got %d", result.NewCount)
	}
}

func TestSync_NotConnected(t *testing.T) {
	provider := newFakeProvider()
	uc, _, _, cleanup := setupUsecase(t, provider)
	defer cleanup()

	if _, err := uc.AddWatchedSender("u1", "prof@univ.edu", "Prof"); err != nil {
		t.Fatalf("AddWatchedSender failed: %v", err)
	}

	_, err := uc.Sync(context.Background(), "u1")
	if !errors.Is(err, gmaildomain.ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
}

func TestSync_CreatesNotificationsOncePerMessage(t *testing.T) {
	provider := newFakeProvider()
	provider.addMessage("m1", "Prof Smith <prof@univ.edu>", "Assignment 3", time.Now().Add(-time.Hour))
	provider.addMessage("m2", "prof@univ.edu", "Grades posted", time.Now().Add(-30*time.Minute))
	provider.addMessage("m3", "Someone Else <other@univ.edu>", "Lunch?", time.Now())

	uc, credRepo, notifRepo, cleanup := setupUsecase(t, provider)
	defer cleanup()

	connectUser(t, credRepo, "u1", nil)
	if _, err := uc.AddWatchedSender("u1", "prof@univ.edu", "Prof Smith"); err != nil {
		t.Fatalf("AddWatchedSender failed: %v", err)
	}

	result, err := uc.Sync(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if !result.Synced || result.NewCount != 2 {
		t.Errorf("Expected Synced=true NewCount=2, got %+v", result)
	}

	// Same unread page again: nothing new.
	result, err = uc.Sync(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Second Sync returned error: %v", err)
	}
	if result.NewCount != 0 {
		t.Errorf("Expected NewCount=0 on rerun, got %d", result.NewCount)
	}

	count, err := notifRepo.CountUnseen("u1")
	if err != nil {
		t.Fatalf("CountUnseen failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 unseen notifications, got %d", count)
	}
}

func TestSync_SenderMatchIsCaseInsensitive(t *testing.T) {
	provider := newFakeProvider()
	provider.addMessage("m1", "Prof <PROF@Univ.EDU>", "Exam", time.Now())

	uc, credRepo, _, cleanup := setupUsecase(t, provider)
	defer cleanup()

	connectUser(t, credRepo, "u1", nil)
	if _, err := uc.AddWatchedSender("u1", "  Prof@univ.edu  ", "Prof"); err != nil {
		t.Fatalf("AddWatchedSender failed: %v", err)
	}

	result, err := uc.Sync(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if result.NewCount != 1 {
		t.Errorf("Expected case-insensitive match to produce 1 notification, got %d", result.NewCount)
	}
}

func TestSync_SkipsFailedFetches(t *testing.T) {
	provider := newFakeProvider()
	provider.addMessage("m1", "prof@univ.edu", "One", time.Now())
	provider.addMessage("m2", "prof@univ.edu", "Two", time.Now())
	provider.fetchErr["m1"] = errors.New("transient 500")

	uc, credRepo, _, cleanup := setupUsecase(t, provider)
	defer cleanup()

	connectUser(t, credRepo, "u1", nil)
	if _, err := uc.AddWatchedSender("u1", "prof@univ.edu", "Prof"); err != nil {
		t.Fatalf("AddWatchedSender failed: %v", err)
	}

	result, err := uc.Sync(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if result.NewCount != 1 {
		t.Errorf("Expected the fetchable message to sync, got NewCount=%d", result.NewCount)
	}

	// The failed message is picked up once the fetch recovers.
	delete(provider.fetchErr, "m1")
	result, err = uc.Sync(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Second Sync returned error: %v", err)
	}
	if result.NewCount != 1 {
		t.Errorf("Expected recovered message to sync, got NewCount=%d", result.NewCount)
	}
}

func TestValidToken_RefreshesExpiredToken(t *testing.T) {
	provider := newFakeProvider()
	provider.addMessage("m1", "prof@univ.edu", "One", time.Now())
	provider.refreshTok = &oauth2.Token{
		AccessToken: "new-access",
		Expiry:      time.Now().Add(time.Hour),
	}

	uc, credRepo, _, cleanup := setupUsecase(t, provider)
	defer cleanup()

	expired := time.Now().Add(-time.Minute)
	connectUser(t, credRepo, "u1", &expired)
	if _, err := uc.AddWatchedSender("u1", "prof@univ.edu", "Prof"); err != nil {
		t.Fatalf("AddWatchedSender failed: %v", err)
	}

	if _, err := uc.Sync(context.Background(), "u1"); err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if provider.refreshCalls != 1 {
		t.Errorf("Expected exactly one refresh, got %d", provider.refreshCalls)
	}

	cred, err := credRepo.FindByUserID("u1")
	if err != nil {
		t.Fatalf("FindByUserID failed: %v", err)
	}
	if cred.AccessToken != "new-access" {
		t.Errorf("Expected refreshed access token persisted, got %q", cred.AccessToken)
	}
	// Google omitted a refresh token; the stored one must survive.
	if cred.RefreshToken != "refresh-u1" {
		t.Errorf("Expected stored refresh token preserved, got %q", cred.RefreshToken)
	}

	// The persisted expiry is in the future, so the next pass skips refresh.
	if _, err := uc.Sync(context.Background(), "u1"); err != nil {
		t.Fatalf("Second Sync returned error: %v", err)
	}
	if provider.refreshCalls != 1 {
		t.Errorf("Expected no second refresh, got %d calls", provider.refreshCalls)
	}
}

func TestValidToken_ReconnectRequired(t *testing.T) {
	provider := newFakeProvider()
	provider.refreshErr = errors.New("invalid_grant")

	uc, credRepo, _, cleanup := setupUsecase(t, provider)
	defer cleanup()

	expired := time.Now().Add(-time.Minute)
	connectUser(t, credRepo, "u1", &expired)
	if _, err := uc.AddWatchedSender("u1", "prof@univ.edu", "Prof"); err != nil {
		t.Fatalf("AddWatchedSender failed: %v", err)
	}

	_, err := uc.Sync(context.Background(), "u1")
	if !errors.Is(err, gmaildomain.ErrReconnectRequired) {
		t.Errorf("Expected ErrReconnectRequired after failed refresh, got %v", err)
	}
}

func TestValidToken_ExpiredWithoutRefreshToken(t *testing.T) {
	provider := newFakeProvider()
	uc, credRepo, _, cleanup := setupUsecase(t, provider)
	defer cleanup()

	expired := time.Now().Add(-time.Minute)
	err := credRepo.Upsert(&gmaildomain.GmailCredential{
		UserID:      "u1",
		AccessToken: "stale",
		ExpiryDate:  &expired,
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if _, err := uc.AddWatchedSender("u1", "prof@univ.edu", "Prof"); err != nil {
		t.Fatalf("AddWatchedSender failed: %v", err)
	}

	_, err = uc.Sync(context.Background(), "u1")
	if !errors.Is(err, gmaildomain.ErrReconnectRequired) {
		t.Errorf("Expected ErrReconnectRequired without a refresh token, got %v", err)
	}
	if provider.refreshCalls != 0 {
		t.Errorf("Expected no refresh attempt, got %d", provider.refreshCalls)
	}
}

func TestHandleCallback_StoresCredential(t *testing.T) {
	provider := newFakeProvider()
	provider.exchangeTok = &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	}

	uc, credRepo, _, cleanup := setupUsecase(t, provider)
	defer cleanup()

	state := signState("u1", "test-secret")
	if err := uc.HandleCallback(context.Background(), "auth-code", state); err != nil {
		t.Fatalf("HandleCallback returned error: %v", err)
	}

	cred, err := credRepo.FindByUserID("u1")
	if err != nil {
		t.Fatalf("FindByUserID failed: %v", err)
	}
	if cred == nil {
		t.Fatal("Expected credential stored after callback")
	}
	if cred.AccessToken != "access" || cred.RefreshToken != "refresh" {
		t.Errorf("Unexpected stored tokens: %+v", cred)
	}
	if cred.ExpiryDate == nil {
		t.Error("Expected expiry persisted")
	}

	connected, err := uc.GetStatus("u1")
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if !connected {
		t.Error("Expected GetStatus=true after callback")
	}
}

func TestHandleCallback_RejectsForgedState(t *testing.T) {
	provider := newFakeProvider()
	provider.exchangeTok = &oauth2.Token{AccessToken: "access"}

	uc, _, _, cleanup := setupUsecase(t, provider)
	defer cleanup()

	forged := signState("u1", "wrong-secret")
	err := uc.HandleCallback(context.Background(), "auth-code", forged)
	if !errors.Is(err, gmaildomain.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState for forged state, got %v", err)
	}
}

func TestDisconnect_RemovesCredential(t *testing.T) {
	provider := newFakeProvider()
	uc, credRepo, _, cleanup := setupUsecase(t, provider)
	defer cleanup()

	connectUser(t, credRepo, "u1", nil)
	if err := uc.Disconnect("u1"); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}

	connected, err := uc.GetStatus("u1")
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if connected {
		t.Error("Expected GetStatus=false after disconnect")
	}
}

func TestGetAuthURL_NotConfigured(t *testing.T) {
	provider := newFakeProvider()
	provider.configured = false

	uc, _, _, cleanup := setupUsecase(t, provider)
	defer cleanup()

	_, err := uc.GetAuthURL("u1")
	if !errors.Is(err, gmaildomain.ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}

func TestSync_RespectsPageSize(t *testing.T) {
	provider := newFakeProvider()
	for i := 0; i < syncPageSize+10; i++ {
		provider.addMessage(fmt.Sprintf("m%d", i), "prof@univ.edu", "Bulk", time.Now())
	}

	uc, credRepo, _, cleanup := setupUsecase(t, provider)
	defer cleanup()

	connectUser(t, credRepo, "u1", nil)
	if _, err := uc.AddWatchedSender("u1", "prof@univ.edu", "Prof"); err != nil {
		t.Fatalf("AddWatchedSender failed: %v", err)
	}

	result, err := uc.Sync(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if result.NewCount != syncPageSize {
		t.Errorf("Expected one page of %d notifications, got %d", syncPageSize, result.NewCount)
	}
}

func TestExtractAddress(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Prof Smith <prof@univ.edu>", "prof@univ.edu"},
		{"<prof@univ.edu>", "prof@univ.edu"},
		{"prof@univ.edu", "prof@univ.edu"},
		{"  PROF@UNIV.EDU  ", "prof@univ.edu"},
		{`"Smith, Prof" <Prof@Univ.edu>`, "prof@univ.edu"},
		{"Broken <prof@univ.edu", "broken <prof@univ.edu"},
	}
	for _, c := range cases {
		if got := extractAddress(c.header); got != c.want {
			t.Errorf("extractAddress(%q) = %q, want %q", c.header, got, c.want)
		}
	}
}
