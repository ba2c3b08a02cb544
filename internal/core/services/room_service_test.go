package services_test

import (
	"context"
	"testing"

	"github.com/dablu-app/dablu_backend/internal/apperrors"
	"github.com/dablu-app/dablu_backend/internal/core/domain"
	portssvc "github.com/dablu-app/dablu_backend/internal/core/ports/services"
	"github.com/dablu-app/dablu_backend/internal/core/services"
	"github.com/dablu-app/dablu_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RoomServiceTestSuite struct {
	suite.Suite
	mockRoomRepo *MockRoomRepository
	mockUserRepo *MockUserRepository
	service      portssvc.RoomSvcFacade
	members      []domain.User
	room         *domain.Room
}

func (suite *RoomServiceTestSuite) SetupTest() {
	suite.mockRoomRepo = new(MockRoomRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.service = services.NewRoomService(suite.mockRoomRepo, suite.mockUserRepo)

	suite.members = []domain.User{
		{UserID: "u0", Username: "alice"},
		{UserID: "u1", Username: "bob"},
		{UserID: "u2", Username: "carol"},
	}
	suite.room = &domain.Room{
		RoomID:  "AB12CD",
		AdminID: "u0",
		Users:   []string{"u0", "u1", "u2"},
		Bill:    domain.NewLedger(3),
	}
	suite.mockRoomRepo.room = suite.room
}

func (suite *RoomServiceTestSuite) TestCreateRoom_Success() {
	ctx := context.Background()
	admin := suite.members[0]

	suite.mockUserRepo.On("FindUserByID", ctx, "u0").Return(&admin, nil).Once()
	suite.mockRoomRepo.On("SaveRoom", ctx, mock.AnythingOfType("domain.Room")).Return(nil).Once()

	room, err := suite.service.CreateRoom(ctx, dto.CreateRoomRequest{AdminID: "u0", RoomName: "Trip"})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), room.RoomID, 6)
	assert.Equal(suite.T(), "Trip", room.RoomName)
	assert.Equal(suite.T(), []string{"u0"}, room.Users)
	assert.Equal(suite.T(), 1, room.Bill.Size())
	suite.mockRoomRepo.AssertExpectations(suite.T())
}

func (suite *RoomServiceTestSuite) TestCreateRoom_BlankName() {
	_, err := suite.service.CreateRoom(context.Background(), dto.CreateRoomRequest{AdminID: "u0", RoomName: "  "})
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *RoomServiceTestSuite) TestJoinRoom_GrowsLedger() {
	ctx := context.Background()
	joiner := domain.User{UserID: "u3", Username: "dave"}

	suite.mockUserRepo.On("FindUserByID", ctx, "u3").Return(&joiner, nil).Once()
	suite.mockRoomRepo.On("MutateRoom", ctx, "AB12CD").Return(nil).Once()

	room, err := suite.service.JoinRoom(ctx, "AB12CD", "u3")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"u0", "u1", "u2", "u3"}, room.Users)
	assert.Equal(suite.T(), 4, room.Bill.Size())
}

func (suite *RoomServiceTestSuite) TestJoinRoom_AlreadyMemberIsNoop() {
	ctx := context.Background()
	member := suite.members[1]

	suite.mockUserRepo.On("FindUserByID", ctx, "u1").Return(&member, nil).Once()
	suite.mockRoomRepo.On("MutateRoom", ctx, "AB12CD").Return(nil).Once()

	room, err := suite.service.JoinRoom(ctx, "AB12CD", "u1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"u0", "u1", "u2"}, room.Users)
	assert.Equal(suite.T(), 3, room.Bill.Size())
}

func (suite *RoomServiceTestSuite) TestAddExpense_Success() {
	ctx := context.Background()
	suite.mockRoomRepo.On("MutateRoom", ctx, "AB12CD").Return(nil).Once()
	suite.mockUserRepo.On("FindUsersByIDs", ctx, []string{"u0", "u1", "u2"}).Return(suite.members, nil).Once()

	req := dto.AddExpenseRequest{
		UserID:      "u0",
		Amount:      decimal.NewFromInt(90),
		Description: "Dinner",
		CreatedBy:   "u0",
		Users: []dto.ExpenseShareInput{
			{UserID: "u0", Share: decimal.NewFromInt(30)},
			{UserID: "u1", Share: decimal.Zero},
			{UserID: "u2", Share: decimal.NewFromInt(60)},
		},
	}

	room, err := suite.service.AddExpense(ctx, "AB12CD", req)
	require.NoError(suite.T(), err)

	// u2 owes the spender 60; the zero-share participant absorbed a zero
	// remainder and owes nothing.
	assert.True(suite.T(), room.Bill[2][0].Equal(decimal.NewFromInt(60)))
	assert.True(suite.T(), room.Bill[1][0].IsZero())

	require.Len(suite.T(), room.PayerList, 1)
	assert.Equal(suite.T(), "u2", room.PayerList[0].SenderID)
	assert.Equal(suite.T(), "u0", room.PayerList[0].ReceiverID)
	assert.True(suite.T(), room.PayerList[0].Amount.Equal(decimal.NewFromInt(60)))

	require.Len(suite.T(), room.History, 1)
	assert.True(suite.T(), room.History[0].IsExpense)
	assert.Equal(suite.T(), "Dinner", room.History[0].Description)
	assert.NotEmpty(suite.T(), room.History[0].Date)
	assert.NotEmpty(suite.T(), room.History[0].Time)
}

func (suite *RoomServiceTestSuite) TestAddExpense_RemainderSplitAcrossZeroShares() {
	ctx := context.Background()
	suite.mockRoomRepo.On("MutateRoom", ctx, "AB12CD").Return(nil).Once()
	suite.mockUserRepo.On("FindUsersByIDs", ctx, []string{"u0", "u1", "u2"}).Return(suite.members, nil).Once()

	req := dto.AddExpenseRequest{
		UserID:      "u0",
		Amount:      decimal.NewFromInt(90),
		Description: "Groceries",
		CreatedBy:   "u0",
		Users: []dto.ExpenseShareInput{
			{UserID: "u1", Share: decimal.Zero},
			{UserID: "u2", Share: decimal.Zero},
		},
	}

	room, err := suite.service.AddExpense(ctx, "AB12CD", req)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), room.Bill[1][0].Equal(decimal.NewFromInt(45)))
	assert.True(suite.T(), room.Bill[2][0].Equal(decimal.NewFromInt(45)))
}

func (suite *RoomServiceTestSuite) TestAddExpense_ValidationFailures() {
	base := dto.AddExpenseRequest{
		UserID:      "u0",
		Amount:      decimal.NewFromInt(50),
		Description: "Taxi",
		CreatedBy:   "u0",
		Users: []dto.ExpenseShareInput{
			{UserID: "u1", Share: decimal.Zero},
		},
	}

	testCases := []struct {
		name   string
		mutate func(r *dto.AddExpenseRequest)
	}{
		{"missing spender", func(r *dto.AddExpenseRequest) { r.UserID = "" }},
		{"zero amount", func(r *dto.AddExpenseRequest) { r.Amount = decimal.Zero }},
		{"negative amount", func(r *dto.AddExpenseRequest) { r.Amount = decimal.NewFromInt(-5) }},
		{"no participants", func(r *dto.AddExpenseRequest) { r.Users = nil }},
		{"blank description", func(r *dto.AddExpenseRequest) { r.Description = "   " }},
		{"no zero share", func(r *dto.AddExpenseRequest) {
			r.Users = []dto.ExpenseShareInput{{UserID: "u1", Share: decimal.NewFromInt(50)}}
		}},
		{"negative share", func(r *dto.AddExpenseRequest) {
			r.Users = []dto.ExpenseShareInput{{UserID: "u1", Share: decimal.NewFromInt(-1)}, {UserID: "u2", Share: decimal.Zero}}
		}},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			req := base
			req.Users = append([]dto.ExpenseShareInput(nil), base.Users...)
			tc.mutate(&req)
			_, err := suite.service.AddExpense(context.Background(), "AB12CD", req)
			assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
		})
	}
}

func (suite *RoomServiceTestSuite) TestAddExpense_SharesExceedAmount() {
	ctx := context.Background()
	suite.mockRoomRepo.On("MutateRoom", ctx, "AB12CD").Return(nil).Once()

	req := dto.AddExpenseRequest{
		UserID:      "u0",
		Amount:      decimal.NewFromInt(50),
		Description: "Taxi",
		CreatedBy:   "u0",
		Users: []dto.ExpenseShareInput{
			{UserID: "u1", Share: decimal.NewFromInt(60)},
			{UserID: "u2", Share: decimal.Zero},
		},
	}

	_, err := suite.service.AddExpense(ctx, "AB12CD", req)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *RoomServiceTestSuite) TestAddExpense_NonMemberParticipant() {
	ctx := context.Background()
	suite.mockRoomRepo.On("MutateRoom", ctx, "AB12CD").Return(nil).Once()

	req := dto.AddExpenseRequest{
		UserID:      "u0",
		Amount:      decimal.NewFromInt(50),
		Description: "Taxi",
		CreatedBy:   "u0",
		Users: []dto.ExpenseShareInput{
			{UserID: "stranger", Share: decimal.Zero},
		},
	}

	_, err := suite.service.AddExpense(ctx, "AB12CD", req)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *RoomServiceTestSuite) TestGetRoomByID_NonMemberForbidden() {
	ctx := context.Background()
	suite.mockRoomRepo.On("FindRoomByID", ctx, "AB12CD").Return(suite.room, nil).Once()

	_, err := suite.service.GetRoomByID(ctx, "AB12CD", "stranger")
	assert.ErrorIs(suite.T(), err, apperrors.ErrForbidden)
}

func (suite *RoomServiceTestSuite) TestDeleteRoom_NonAdminForbidden() {
	ctx := context.Background()
	suite.mockRoomRepo.On("FindRoomByID", ctx, "AB12CD").Return(suite.room, nil).Once()

	err := suite.service.DeleteRoom(ctx, "AB12CD", "u1")
	assert.ErrorIs(suite.T(), err, apperrors.ErrForbidden)
}

func (suite *RoomServiceTestSuite) TestDeleteRoom_OutstandingDebts() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.room.Bill.AddDebt(1, 0, decimal.NewFromInt(10)))
	suite.mockRoomRepo.On("FindRoomByID", ctx, "AB12CD").Return(suite.room, nil).Once()

	err := suite.service.DeleteRoom(ctx, "AB12CD", "u0")
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *RoomServiceTestSuite) TestDeleteRoom_Success() {
	ctx := context.Background()
	suite.mockRoomRepo.On("FindRoomByID", ctx, "AB12CD").Return(suite.room, nil).Once()
	suite.mockRoomRepo.On("DeleteRoom", ctx, "AB12CD").Return(nil).Once()

	err := suite.service.DeleteRoom(ctx, "AB12CD", "u0")
	require.NoError(suite.T(), err)
	suite.mockRoomRepo.AssertExpectations(suite.T())
}

func TestRoomServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RoomServiceTestSuite))
}
