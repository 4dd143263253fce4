package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lotus-yoga/booking-api/internal/model"
	"github.com/lotus-yoga/booking-api/internal/repository"
)

type stubUserStore struct {
	users      []model.User
	byEmail    *model.User
	byEmailErr error
	created    *model.User
	createErr  error
	createdN   int
	updateErr  error
}

func (s *stubUserStore) List(ctx context.Context) ([]model.User, error) {
	return s.users, nil
}

func (s *stubUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if s.byEmail == nil && s.byEmailErr == nil {
		return nil, repository.ErrNotFound
	}
	return s.byEmail, s.byEmailErr
}

func (s *stubUserStore) Create(ctx context.Context, user model.User) (*model.User, error) {
	s.createdN++
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.created != nil {
		return s.created, nil
	}
	user.ID = primitive.NewObjectID()
	return &user, nil
}

func (s *stubUserStore) Update(ctx context.Context, id primitive.ObjectID, update model.UpdateUserRequest) error {
	return s.updateErr
}

type stubInstructorStore struct {
	instructors []model.Instructor
	byID        *model.Instructor
	byIDErr     error
	byName      []model.Instructor
	byNameErr   error
}

func (s *stubInstructorStore) List(ctx context.Context) ([]model.Instructor, error) {
	return s.instructors, nil
}

func (s *stubInstructorStore) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Instructor, error) {
	return s.byID, s.byIDErr
}

func (s *stubInstructorStore) ListByName(ctx context.Context, name string) ([]model.Instructor, error) {
	return s.byName, s.byNameErr
}

type stubClassStore struct {
	classes    []model.Class
	byID       *model.Class
	byIDErr    error
	byName     []model.Class
	byIDs      []model.Class
	reserved   *model.Class
	reserveErr error
	releasedN  int
}

func (s *stubClassStore) List(ctx context.Context) ([]model.Class, error) {
	return s.classes, nil
}

func (s *stubClassStore) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Class, error) {
	return s.byID, s.byIDErr
}

func (s *stubClassStore) ListByInstructorName(ctx context.Context, name string) ([]model.Class, error) {
	return s.byName, nil
}

func (s *stubClassStore) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Class, error) {
	return s.byIDs, nil
}

func (s *stubClassStore) ReserveSeat(ctx context.Context, id primitive.ObjectID) (*model.Class, error) {
	return s.reserved, s.reserveErr
}

func (s *stubClassStore) ReleaseSeat(ctx context.Context, id primitive.ObjectID) error {
	s.releasedN++
	return nil
}

type stubPurchaseStore struct {
	purchases    []model.Purchase
	byEmail      []model.Purchase
	byClassEmail *model.Purchase
	createErr    error
	createdN     int
	deleteErr    error
	deletedID    primitive.ObjectID
}

func (s *stubPurchaseStore) List(ctx context.Context) ([]model.Purchase, error) {
	return s.purchases, nil
}

func (s *stubPurchaseStore) ListByEmail(ctx context.Context, email string) ([]model.Purchase, error) {
	return s.byEmail, nil
}

func (s *stubPurchaseStore) GetByClassAndEmail(ctx context.Context, classID primitive.ObjectID, email string) (*model.Purchase, error) {
	if s.byClassEmail == nil {
		return nil, repository.ErrNotFound
	}
	return s.byClassEmail, nil
}

func (s *stubPurchaseStore) Create(ctx context.Context, purchase model.Purchase) (*model.Purchase, error) {
	s.createdN++
	if s.createErr != nil {
		return nil, s.createErr
	}
	purchase.ID = primitive.NewObjectID()
	return &purchase, nil
}

func (s *stubPurchaseStore) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	s.deletedID = id
	return s.deleteErr
}

func newTestService(users *stubUserStore, instructors *stubInstructorStore, classes *stubClassStore, purchases *stubPurchaseStore) *BookingService {
	if users == nil {
		users = &stubUserStore{}
	}
	if instructors == nil {
		instructors = &stubInstructorStore{}
	}
	if classes == nil {
		classes = &stubClassStore{}
	}
	if purchases == nil {
		purchases = &stubPurchaseStore{}
	}
	return NewBookingService(users, instructors, classes, purchases)
}

// ─── Enrollment ──────────────────────────────────────────────────────────────

func TestPurchase_Success(t *testing.T) {
	classID := primitive.NewObjectID()
	classes := &stubClassStore{
		byID:     &model.Class{ID: classID, TotalSeats: 10, StudentsEnrolled: 4},
		reserved: &model.Class{ID: classID, TotalSeats: 10, StudentsEnrolled: 5},
	}
	purchases := &stubPurchaseStore{}
	svc := newTestService(nil, nil, classes, purchases)

	result, err := svc.Purchase(context.Background(), model.PurchaseRequest{
		ClassID: classID.Hex(),
		Email:   "a@x.com",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Purchase successful", result.Message)
	assert.Equal(t, 5, result.StudentsEnrolled)
	assert.Equal(t, 10, result.TotalSeats)
	assert.Equal(t, 1, purchases.createdN)
}

func TestPurchase_ClassNotFound(t *testing.T) {
	classes := &stubClassStore{byIDErr: repository.ErrNotFound}
	svc := newTestService(nil, nil, classes, nil)

	_, err := svc.Purchase(context.Background(), model.PurchaseRequest{
		ClassID: primitive.NewObjectID().Hex(),
		Email:   "a@x.com",
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPurchase_DuplicateEnrollment(t *testing.T) {
	classID := primitive.NewObjectID()
	classes := &stubClassStore{
		byID: &model.Class{ID: classID, TotalSeats: 10, StudentsEnrolled: 4},
	}
	purchases := &stubPurchaseStore{
		byClassEmail: &model.Purchase{ClassID: classID, Email: "a@x.com"},
	}
	svc := newTestService(nil, nil, classes, purchases)

	_, err := svc.Purchase(context.Background(), model.PurchaseRequest{
		ClassID: classID.Hex(),
		Email:   "a@x.com",
	})
	assert.ErrorIs(t, err, repository.ErrAlreadyEnrolled)
	assert.Zero(t, purchases.createdN)
}

func TestPurchase_ClassFull(t *testing.T) {
	classID := primitive.NewObjectID()
	classes := &stubClassStore{
		byID:       &model.Class{ID: classID, TotalSeats: 1, StudentsEnrolled: 1},
		reserveErr: repository.ErrClassFull,
	}
	purchases := &stubPurchaseStore{}
	svc := newTestService(nil, nil, classes, purchases)

	_, err := svc.Purchase(context.Background(), model.PurchaseRequest{
		ClassID: classID.Hex(),
		Email:   "b@x.com",
	})
	assert.ErrorIs(t, err, repository.ErrClassFull)
	assert.Zero(t, purchases.createdN)
}

func TestPurchase_ReleasesSeatWhenRecordFails(t *testing.T) {
	classID := primitive.NewObjectID()
	classes := &stubClassStore{
		byID:     &model.Class{ID: classID, TotalSeats: 10, StudentsEnrolled: 4},
		reserved: &model.Class{ID: classID, TotalSeats: 10, StudentsEnrolled: 5},
	}
	purchases := &stubPurchaseStore{createErr: errors.New("write failed")}
	svc := newTestService(nil, nil, classes, purchases)

	_, err := svc.Purchase(context.Background(), model.PurchaseRequest{
		ClassID: classID.Hex(),
		Email:   "a@x.com",
	})
	require.Error(t, err)
	assert.Equal(t, 1, classes.releasedN)
}

func TestPurchase_ConcurrentDuplicateHitsIndex(t *testing.T) {
	classID := primitive.NewObjectID()
	classes := &stubClassStore{
		byID:     &model.Class{ID: classID, TotalSeats: 10, StudentsEnrolled: 4},
		reserved: &model.Class{ID: classID, TotalSeats: 10, StudentsEnrolled: 5},
	}
	purchases := &stubPurchaseStore{createErr: repository.ErrAlreadyEnrolled}
	svc := newTestService(nil, nil, classes, purchases)

	_, err := svc.Purchase(context.Background(), model.PurchaseRequest{
		ClassID: classID.Hex(),
		Email:   "a@x.com",
	})
	assert.ErrorIs(t, err, repository.ErrAlreadyEnrolled)
	assert.Equal(t, 1, classes.releasedN)
}

func TestPurchase_InvalidArguments(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil)

	_, err := svc.Purchase(context.Background(), model.PurchaseRequest{
		ClassID: "not-a-hex-id",
		Email:   "a@x.com",
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.Purchase(context.Background(), model.PurchaseRequest{
		ClassID: primitive.NewObjectID().Hex(),
		Email:   "not-an-email",
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// ─── Users ───────────────────────────────────────────────────────────────────

func TestCreateUser_IdempotentByEmail(t *testing.T) {
	existing := &model.User{ID: primitive.NewObjectID(), Email: "a@x.com", Name: "A"}
	users := &stubUserStore{byEmail: existing}
	svc := newTestService(users, nil, nil, nil)

	user, created, err := svc.CreateUser(context.Background(), model.CreateUserRequest{
		Name:  "A",
		Email: "a@x.com",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, user.ID)
	assert.Zero(t, users.createdN, "existing email must not insert a second record")
}

func TestCreateUser_InsertsNewUser(t *testing.T) {
	users := &stubUserStore{}
	svc := newTestService(users, nil, nil, nil)

	user, created, err := svc.CreateUser(context.Background(), model.CreateUserRequest{
		Name:  "B",
		Email: "B@X.com",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "b@x.com", user.Email, "email must be normalized")
	assert.Equal(t, 1, users.createdN)
}

func TestCreateUser_RejectsInvalidEmail(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil)

	_, _, err := svc.CreateUser(context.Background(), model.CreateUserRequest{
		Name:  "C",
		Email: "nope",
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// memUserStore keys users by the exact email string it was given, so any
// normalization mismatch between write and read paths shows up as a miss.
type memUserStore struct {
	stubUserStore
	byEmailMap map[string]model.User
}

func (s *memUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if u, ok := s.byEmailMap[email]; ok {
		return &u, nil
	}
	return nil, repository.ErrNotFound
}

func (s *memUserStore) Create(ctx context.Context, user model.User) (*model.User, error) {
	user.ID = primitive.NewObjectID()
	s.byEmailMap[user.Email] = user
	return &user, nil
}

func TestCreateUser_ReadableBackBySameEmailString(t *testing.T) {
	users := &memUserStore{byEmailMap: map[string]model.User{}}
	svc := newTestService(nil, nil, nil, nil)
	svc.users = users

	created, ok, err := svc.CreateUser(context.Background(), model.CreateUserRequest{
		Name:  "A",
		Email: " A@X.com ",
	})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := svc.GetUserByEmail(context.Background(), " A@X.com ")
	require.NoError(t, err)
	require.NotNil(t, got, "user registered with an email must be retrievable by the same string")
	assert.Equal(t, created.ID, got.ID)
}

// memPurchaseStore keys purchases by the exact email string it was given.
type memPurchaseStore struct {
	stubPurchaseStore
	byEmailMap map[string][]model.Purchase
}

func (s *memPurchaseStore) ListByEmail(ctx context.Context, email string) ([]model.Purchase, error) {
	return s.byEmailMap[email], nil
}

func (s *memPurchaseStore) Create(ctx context.Context, purchase model.Purchase) (*model.Purchase, error) {
	purchase.ID = primitive.NewObjectID()
	s.byEmailMap[purchase.Email] = append(s.byEmailMap[purchase.Email], purchase)
	return &purchase, nil
}

func TestPurchase_ReadableBackBySameEmailString(t *testing.T) {
	classID := primitive.NewObjectID()
	classes := &stubClassStore{
		byID:     &model.Class{ID: classID, TotalSeats: 10, StudentsEnrolled: 0},
		reserved: &model.Class{ID: classID, TotalSeats: 10, StudentsEnrolled: 1},
		byIDs:    []model.Class{{ID: classID}},
	}
	purchases := &memPurchaseStore{byEmailMap: map[string][]model.Purchase{}}
	svc := newTestService(nil, nil, classes, nil)
	svc.purchases = purchases

	_, err := svc.Purchase(context.Background(), model.PurchaseRequest{
		ClassID: classID.Hex(),
		Email:   "A@X.com",
	})
	require.NoError(t, err)

	got, err := svc.PurchasedClasses(context.Background(), "A@X.com")
	require.NoError(t, err)
	require.Len(t, got, 1, "purchase made with an email must be listed by the same string")
	assert.Equal(t, classID, got[0].ID)
}

func TestGetUserByEmail_NilWhenAbsent(t *testing.T) {
	svc := newTestService(&stubUserStore{}, nil, nil, nil)

	user, err := svc.GetUserByEmail(context.Background(), "ghost@x.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUpdateUser_Validation(t *testing.T) {
	svc := newTestService(&stubUserStore{}, nil, nil, nil)
	name := "New Name"

	err := svc.UpdateUser(context.Background(), "bad-id", model.UpdateUserRequest{Name: &name})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = svc.UpdateUser(context.Background(), primitive.NewObjectID().Hex(), model.UpdateUserRequest{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = svc.UpdateUser(context.Background(), primitive.NewObjectID().Hex(), model.UpdateUserRequest{Name: &name})
	assert.NoError(t, err)
}

// ─── Cross-references ────────────────────────────────────────────────────────

func TestClassesByInstructor(t *testing.T) {
	instructorID := primitive.NewObjectID()
	instructors := &stubInstructorStore{
		byID: &model.Instructor{ID: instructorID, Name: "Jane"},
	}
	classes := &stubClassStore{
		byName: []model.Class{{Instructor: "Jane"}, {Instructor: "Jane"}},
	}
	svc := newTestService(nil, instructors, classes, nil)

	got, err := svc.ClassesByInstructor(context.Background(), instructorID.Hex())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestClassesByInstructor_UnknownInstructor(t *testing.T) {
	instructors := &stubInstructorStore{byIDErr: repository.ErrNotFound}
	svc := newTestService(nil, instructors, nil, nil)

	_, err := svc.ClassesByInstructor(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInstructorsForClass(t *testing.T) {
	classID := primitive.NewObjectID()
	classes := &stubClassStore{
		byID: &model.Class{ID: classID, Instructor: "Jane"},
	}
	instructors := &stubInstructorStore{
		byName: []model.Instructor{{Name: "Jane"}},
	}
	svc := newTestService(nil, instructors, classes, nil)

	got, err := svc.InstructorsForClass(context.Background(), classID.Hex())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Jane", got[0].Name)
}

func TestInstructorsForClass_UnknownClass(t *testing.T) {
	classes := &stubClassStore{byIDErr: repository.ErrNotFound}
	svc := newTestService(nil, nil, classes, nil)

	_, err := svc.InstructorsForClass(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInstructorsForClass_InvalidID(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil)

	_, err := svc.InstructorsForClass(context.Background(), "not-hex")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGetClassWithInstructors(t *testing.T) {
	classID := primitive.NewObjectID()
	classes := &stubClassStore{
		byID: &model.Class{ID: classID, Instructor: "Jane"},
	}
	instructors := &stubInstructorStore{
		byName: []model.Instructor{{Name: "Jane"}},
	}
	svc := newTestService(nil, instructors, classes, nil)

	detail, err := svc.GetClassWithInstructors(context.Background(), classID.Hex())
	require.NoError(t, err)
	assert.Equal(t, classID, detail.ClassItem.ID)
	require.Len(t, detail.InstructorItem, 1)
	assert.Equal(t, "Jane", detail.InstructorItem[0].Name)
}

func TestGetClassWithInstructors_EmptyMatchIsNotAnError(t *testing.T) {
	classID := primitive.NewObjectID()
	classes := &stubClassStore{
		byID: &model.Class{ID: classID, Instructor: "Renamed"},
	}
	svc := newTestService(nil, &stubInstructorStore{}, classes, nil)

	detail, err := svc.GetClassWithInstructors(context.Background(), classID.Hex())
	require.NoError(t, err)
	assert.NotNil(t, detail.InstructorItem)
	assert.Empty(t, detail.InstructorItem)
}

// ─── Purchases ───────────────────────────────────────────────────────────────

func TestPurchasedClasses_JoinsByClassID(t *testing.T) {
	c1 := primitive.NewObjectID()
	c2 := primitive.NewObjectID()
	purchases := &stubPurchaseStore{
		byEmail: []model.Purchase{{ClassID: c1}, {ClassID: c2}},
	}
	// One of the two class ids no longer resolves; it is dropped silently.
	classes := &stubClassStore{
		byIDs: []model.Class{{ID: c1}},
	}
	svc := newTestService(nil, nil, classes, purchases)

	got, err := svc.PurchasedClasses(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, c1, got[0].ID)
}

func TestRemovePurchase(t *testing.T) {
	purchases := &stubPurchaseStore{}
	svc := newTestService(nil, nil, nil, purchases)

	id := primitive.NewObjectID()
	require.NoError(t, svc.RemovePurchase(context.Background(), id.Hex()))
	assert.Equal(t, id, purchases.deletedID)

	err := svc.RemovePurchase(context.Background(), "short")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRemovePurchase_NotFound(t *testing.T) {
	purchases := &stubPurchaseStore{deleteErr: repository.ErrNotFound}
	svc := newTestService(nil, nil, nil, purchases)

	err := svc.RemovePurchase(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
