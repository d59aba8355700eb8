package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	account "tradegate/internal/account/models"
	accountstore "tradegate/internal/account/store"
	"tradegate/internal/document/models"
	docstore "tradegate/internal/document/store"
	"tradegate/internal/platform/metrics"
	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
	"tradegate/pkg/platform/audit"
)

// auditRecorder captures emitted events for assertions.
type auditRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *auditRecorder) Record(_ context.Context, event audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *auditRecorder) actions() []audit.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]audit.Action, 0, len(r.events))
	for _, event := range r.events {
		actions = append(actions, event.Action)
	}
	return actions
}

type fixture struct {
	service  *Service
	accounts *accountstore.Memory
	audit    *auditRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	recorder := &auditRecorder{}
	accounts := accountstore.NewMemory()
	documents := docstore.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(documents, accounts, NewShardedTx(), recorder, metrics.NewWith(prometheus.NewRegistry()), logger)
	return &fixture{service: svc, accounts: accounts, audit: recorder}
}

func (f *fixture) createUser(t *testing.T, role account.Role, emailVerified bool) *account.User {
	t.Helper()
	user := &account.User{
		ID:            id.NewUserID(),
		Username:      account.NewUsername(),
		Email:         "trader@example.com",
		Role:          role,
		EmailVerified: emailVerified,
		Status:        account.StatusUnverified,
		CreatedAt:     time.Now(),
	}
	if emailVerified {
		user.Status = account.StatusPending
	}
	require.NoError(t, f.accounts.Create(context.Background(), user))
	return user
}

func TestSubmit_ImporterIDPairCompletesDocuments(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, account.RoleImporter, false)

	result, err := f.service.Submit(context.Background(), user.ID,
		models.NewSlotSet(models.SlotIDFront, models.SlotIDBack), nil)
	require.NoError(t, err)

	assert.True(t, result.DocsComplete)
	assert.True(t, result.CompletedNow)
	// Email still unconfirmed, so documents alone yield pending.
	assert.Equal(t, account.StatusPending, result.Status)

	stored, err := f.accounts.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, account.StatusPending, stored.Status)
	assert.False(t, stored.EmailVerified)

	assert.Equal(t, []audit.Action{audit.ActionDocumentSubmitted, audit.ActionVerificationCompleted}, f.audit.actions())
}

func TestSubmit_BothGatesYieldApproved(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, account.RoleImporter, true)

	result, err := f.service.Submit(context.Background(), user.ID,
		models.NewSlotSet(models.SlotBusinessLicense), nil)
	require.NoError(t, err)

	assert.Equal(t, account.StatusApproved, result.Status)

	stored, err := f.accounts.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, account.StatusApproved, stored.Status)
}

func TestSubmit_IncompletePairRejected(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, account.RoleImporter, false)

	_, err := f.service.Submit(context.Background(), user.ID,
		models.NewSlotSet(models.SlotIDFront), nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeIncompletePair))

	// Rejected uploads leave no trace in history or status.
	submissions, err := f.service.List(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, submissions)

	stored, err := f.accounts.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, account.StatusUnverified, stored.Status)

	assert.Equal(t, []audit.Action{audit.ActionDocumentRejected}, f.audit.actions())
}

func TestSubmit_SupplierIDPairInsufficient(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, account.RoleSupplier, false)

	// A well-formed ID pair is still the wrong document for a supplier.
	_, err := f.service.Submit(context.Background(), user.ID,
		models.NewSlotSet(models.SlotIDFront, models.SlotIDBack), nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInsufficientDocuments))

	stored, err := f.accounts.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, account.StatusUnverified, stored.Status)
}

func TestSubmit_CumulativeAcrossSubmissions(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, account.RoleImporter, false)
	ctx := context.Background()

	// The license alone completes the importer requirement, so the later DL
	// pair must not re-fire the completion event.
	first, err := f.service.Submit(ctx, user.ID, models.NewSlotSet(models.SlotBusinessLicense), nil)
	require.NoError(t, err)
	assert.True(t, first.CompletedNow)

	second, err := f.service.Submit(ctx, user.ID,
		models.NewSlotSet(models.SlotDLFront, models.SlotDLBack), nil)
	require.NoError(t, err)
	assert.True(t, second.DocsComplete)
	assert.False(t, second.CompletedNow)

	cumulative, complete, err := f.service.Progress(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, complete)
	assert.ElementsMatch(t,
		[]models.Slot{models.SlotBusinessLicense, models.SlotDLFront, models.SlotDLBack},
		cumulative.Slots())
}

func TestSubmit_FacePhotoAloneInsufficientButKept(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, account.RoleImporter, false)
	ctx := context.Background()

	// A face photo is never required, but it is a valid upload on its own.
	result, err := f.service.Submit(ctx, user.ID, models.NewSlotSet(models.SlotFacePhoto), nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInsufficientDocuments))
	assert.Nil(t, result)
}

func TestSubmit_UnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Submit(context.Background(), id.NewUserID(),
		models.NewSlotSet(models.SlotBusinessLicense), nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestSubmit_RacingSubmissionsSerialize(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, account.RoleImporter, false)
	ctx := context.Background()

	var group errgroup.Group
	for i := 0; i < 8; i++ {
		group.Go(func() error {
			_, err := f.service.Submit(ctx, user.ID,
				models.NewSlotSet(models.SlotBusinessLicense), nil)
			return err
		})
	}
	require.NoError(t, group.Wait())

	// All eight land in history, but exactly one crossed the completion line.
	submissions, err := f.service.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, submissions, 8)

	completions := 0
	for _, event := range f.audit.actions() {
		if event == audit.ActionVerificationCompleted {
			completions++
		}
	}
	assert.Equal(t, 1, completions)

	stored, err := f.accounts.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, account.StatusPending, stored.Status)
}

func TestSubmit_ObjectKeysPersisted(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, account.RoleImporter, false)
	ctx := context.Background()

	keys := map[models.Slot]string{
		models.SlotIDFront: "uploads/id-front.jpg",
		models.SlotIDBack:  "uploads/id-back.jpg",
	}
	_, err := f.service.Submit(ctx, user.ID,
		models.NewSlotSet(models.SlotIDFront, models.SlotIDBack), keys)
	require.NoError(t, err)

	submissions, err := f.service.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, submissions, 1)
	assert.Equal(t, keys, submissions[0].ObjectKeys)
}
