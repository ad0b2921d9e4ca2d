package reconcile

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/alexkh/token-ledger/pkg/models"
	"github.com/alexkh/token-ledger/pkg/storage"
	"github.com/alexkh/token-ledger/pkg/storage/mocks"
)

func TestRepair(t *testing.T) {
	req := &models.RepairRequest{UserId: "user1", Observed: 100, Expected: 150}

	t.Run("Repairs Drifted Balance", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		repairer := NewRepairer(mockStore, zerolog.Nop())

		mockStore.On("GetProfile", mock.Anything, "user1").
			Return(&models.Profile{Id: "user1", TokensBalance: 100}, nil).Once()
		mockStore.On("ListTransactionsByUserID", mock.Anything, "user1").Return([]models.Transaction{
			{Id: "tx-1", Amount: 150, Status: models.COMPLETED},
			{Id: "tx-2", Amount: 999, Status: models.PENDING},
		}, nil).Once()
		mockStore.On("RepairProfileBalance", mock.Anything, "user1", int64(100), int64(150)).
			Return(nil).Once()

		err := repairer.Repair(context.Background(), req)

		assert.NoError(t, err)
		mockStore.AssertExpectations(t)
	})

	t.Run("Already Consistent Is A No-Op", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		repairer := NewRepairer(mockStore, zerolog.Nop())

		// A live completion fixed the drift before the message was consumed.
		mockStore.On("GetProfile", mock.Anything, "user1").
			Return(&models.Profile{Id: "user1", TokensBalance: 150}, nil).Once()
		mockStore.On("ListTransactionsByUserID", mock.Anything, "user1").Return([]models.Transaction{
			{Id: "tx-1", Amount: 150, Status: models.COMPLETED},
		}, nil).Once()

		err := repairer.Repair(context.Background(), req)

		assert.NoError(t, err)
		mockStore.AssertNotCalled(t, "RepairProfileBalance")
	})

	t.Run("Lost Race Defers To Next Sweep", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		repairer := NewRepairer(mockStore, zerolog.Nop())

		mockStore.On("GetProfile", mock.Anything, "user1").
			Return(&models.Profile{Id: "user1", TokensBalance: 100}, nil).Once()
		mockStore.On("ListTransactionsByUserID", mock.Anything, "user1").Return([]models.Transaction{
			{Id: "tx-1", Amount: 150, Status: models.COMPLETED},
		}, nil).Once()
		mockStore.On("RepairProfileBalance", mock.Anything, "user1", int64(100), int64(150)).
			Return(storage.ErrBalanceDrifted).Once()

		err := repairer.Repair(context.Background(), req)

		assert.NoError(t, err)
		mockStore.AssertExpectations(t)
	})

	t.Run("Missing Profile Is A No-Op", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		repairer := NewRepairer(mockStore, zerolog.Nop())

		mockStore.On("GetProfile", mock.Anything, "user1").
			Return(nil, storage.ErrProfileNotFound).Once()

		err := repairer.Repair(context.Background(), req)

		assert.NoError(t, err)
		mockStore.AssertNotCalled(t, "RepairProfileBalance")
	})
}
