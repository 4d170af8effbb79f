package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shandysiswandi/seedvault/internal/auth/entity"
	"github.com/shandysiswandi/seedvault/internal/auth/outbound/email"
	"github.com/shandysiswandi/seedvault/internal/auth/outbound/mq"
	"github.com/shandysiswandi/seedvault/internal/pkg/clock"
	"github.com/shandysiswandi/seedvault/internal/pkg/config"
	"github.com/shandysiswandi/seedvault/internal/pkg/credential"
	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/shandysiswandi/seedvault/internal/pkg/goroutine"
	"github.com/shandysiswandi/seedvault/internal/pkg/hash"
	"github.com/shandysiswandi/seedvault/internal/pkg/instrument"
	"github.com/shandysiswandi/seedvault/internal/pkg/jwt"
	"github.com/shandysiswandi/seedvault/internal/pkg/kvstore"
	"github.com/shandysiswandi/seedvault/internal/pkg/mail"
	"github.com/shandysiswandi/seedvault/internal/pkg/messaging"
	"github.com/shandysiswandi/seedvault/internal/pkg/ratelimit"
	"github.com/shandysiswandi/seedvault/internal/pkg/uid"
	"github.com/shandysiswandi/seedvault/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	password = "Vault#2024pass"
	client   = "203.0.113.7"
)

type fixture struct {
	uc     *Usecase
	clock  *clock.Manual
	store  *kvstore.Memory
	broker *messaging.Memory
	mail   *mail.Memory
	gm     *goroutine.Manager
	jwt    *jwt.Service
}

type encryption bool

func (e encryption) Encrypted() bool { return bool(e) }

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clk := clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := kvstore.NewMemory(clk)
	broker := messaging.NewMemory()
	mailer := &mail.Memory{}
	gm := goroutine.NewManager(10)
	ins := instrument.NewNoop()

	cfg, err := config.NewViperFromBytes("yaml", []byte("alert:\n  enabled: true\n  recipients: ops@example.com\n"))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	session := jwt.New(jwt.Config{Clock: clk})

	uc := New(Dependency{
		Credential:    credential.NewManager(store, hash.NewPBKDF2(1000)),
		Session:       session,
		Limiter:       ratelimit.New(store, clk),
		Encryption:    encryption(true),
		RepoMessaging: mq.NewMessaging(broker, ins, uid.NewUUID(), ""),
		RepoMail:      email.New(mailer, ins),
		Validator:     v,
		Config:        cfg,
		Clock:         clk,
		Instrument:    ins,
		Goroutine:     gm,
	})

	return &fixture{uc: uc, clock: clk, store: store, broker: broker, mail: mailer, gm: gm, jwt: session}
}

func (f *fixture) events(t *testing.T) []string {
	t.Helper()
	require.NoError(t, f.gm.Wait())

	var types []string
	for _, m := range f.broker.Messages() {
		assert.Equal(t, mq.DefaultTopic, m.Destination)
		var ev messaging.Event
		require.NoError(t, json.Unmarshal(m.Message.Body, &ev))
		assert.Equal(t, client, ev.Client)
		types = append(types, ev.Type)
	}
	return types
}

func TestUsecase_StatusAndSetup(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	st, err := f.uc.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.SetupCompleted)
	assert.True(t, st.EncryptionEnabled)

	_, err = f.uc.Setup(ctx, SetupInput{Password: "weak", ClientID: client})
	assert.True(t, goerror.IsKind(err, goerror.KindValidation))

	sess, err := f.uc.Setup(ctx, SetupInput{Password: password, ClientID: client})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, jwt.ReasonSetup, sess.Reason)
	assert.Equal(t, f.clock.Now().Add(jwt.DefaultTTL), sess.ExpiresAt)

	clm, renewed, err := f.uc.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Empty(t, renewed)
	assert.Equal(t, jwt.ReasonSetup, clm.Reason)

	st, err = f.uc.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.SetupCompleted)

	_, err = f.uc.Setup(ctx, SetupInput{Password: password, ClientID: client})
	assert.True(t, goerror.IsKind(err, goerror.KindConflict))

	assert.Equal(t, []string{entity.EventSetupCompleted.String()}, f.events(t))
}

func TestUsecase_Login(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Login(ctx, LoginInput{Password: password, ClientID: client})
	assert.True(t, goerror.IsKind(err, goerror.KindAuthorization), "login before setup")

	_, err = f.uc.Setup(ctx, SetupInput{Password: password, ClientID: client})
	require.NoError(t, err)

	_, err = f.uc.Login(ctx, LoginInput{Password: "Wrong#2024pass", ClientID: client})
	assert.True(t, goerror.IsKind(err, goerror.KindAuthorization))

	sess, err := f.uc.Login(ctx, LoginInput{Password: password, ClientID: client})
	require.NoError(t, err)
	assert.Equal(t, jwt.ReasonLogin, sess.Reason)

	clm, ok := f.jwt.Verify(sess.Token, mustSigningKey(t, f))
	require.True(t, ok)
	assert.Equal(t, f.clock.Now().Unix(), clm.LoginAt)

	_, err = f.store.Get(ctx, "ratelimit:v2:login:"+client)
	require.ErrorIs(t, err, kvstore.ErrNotFound, "success resets the login window")

	assert.ElementsMatch(t, []string{
		entity.EventSetupCompleted.String(),
		entity.EventLoginFailed.String(),
		entity.EventLoginSucceeded.String(),
	}, f.events(t))
}

func TestUsecase_Login_Lockout(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Setup(ctx, SetupInput{Password: password, ClientID: "setup-client"})
	require.NoError(t, err)

	for range ratelimit.PolicyLogin.MaxAttempts {
		_, err = f.uc.Login(ctx, LoginInput{Password: "Wrong#2024pass", ClientID: client})
		require.True(t, goerror.IsKind(err, goerror.KindAuthorization))
		f.clock.Advance(time.Second)
	}

	_, err = f.uc.Login(ctx, LoginInput{Password: password, ClientID: client})
	require.True(t, goerror.IsKind(err, goerror.KindTooManyRequests))

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, 55, gerr.RetryAfter())

	f.clock.Advance(56 * time.Second)
	_, err = f.uc.Login(ctx, LoginInput{Password: password, ClientID: client})
	require.NoError(t, err)

	require.NoError(t, f.gm.Wait())
	sent := f.mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"ops@example.com"}, sent[0].To)
	assert.Contains(t, sent[0].Subject, client)

	var locked int
	for _, m := range f.broker.Messages() {
		var ev messaging.Event
		require.NoError(t, json.Unmarshal(m.Message.Body, &ev))
		if ev.Type == entity.EventLoginLocked.String() {
			locked++
		}
	}
	assert.Equal(t, 1, locked)
}

func TestUsecase_Refresh(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Refresh(ctx, RefreshInput{})
	assert.True(t, goerror.IsKind(err, goerror.KindAuthentication))

	_, err = f.uc.Refresh(ctx, RefreshInput{Token: "a.b.c"})
	assert.True(t, goerror.IsKind(err, goerror.KindAuthentication), "before setup")

	sess, err := f.uc.Setup(ctx, SetupInput{Password: password, ClientID: client})
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	next, err := f.uc.Refresh(ctx, RefreshInput{Token: sess.Token})
	require.NoError(t, err)
	assert.NotEqual(t, sess.Token, next.Token)
	assert.Equal(t, jwt.ReasonRefresh, next.Reason)

	_, err = f.uc.Refresh(ctx, RefreshInput{Token: sess.Token + "x"})
	assert.True(t, goerror.IsKind(err, goerror.KindAuthentication))
	require.NoError(t, f.gm.Wait())
}

func TestUsecase_Authenticate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.uc.Setup(ctx, SetupInput{Password: password, ClientID: client})
	require.NoError(t, err)

	_, _, err = f.uc.Authenticate(ctx, "garbage")
	assert.True(t, goerror.IsKind(err, goerror.KindAuthentication))

	f.clock.Advance(jwt.DefaultTTL - jwt.DefaultRefreshThreshold + time.Hour)
	clm, renewed, err := f.uc.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, jwt.ReasonSetup, clm.Reason)
	require.NotEmpty(t, renewed)

	_, renewedAgain, err := f.uc.Authenticate(ctx, renewed)
	require.NoError(t, err)
	assert.Empty(t, renewedAgain)

	f.clock.Advance(jwt.DefaultRefreshThreshold)
	_, _, err = f.uc.Authenticate(ctx, sess.Token)
	assert.True(t, goerror.IsKind(err, goerror.KindAuthentication), "expired")
	require.NoError(t, f.gm.Wait())
}

func TestUsecase_Logout(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, f.uc.Logout(context.Background(), LogoutInput{ClientID: client}))
}

func mustSigningKey(t *testing.T, f *fixture) []byte {
	t.Helper()
	key, err := f.uc.credential.SigningKey(context.Background())
	require.NoError(t, err)
	return key
}
