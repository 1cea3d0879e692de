package postgres_test

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/handover"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/packing"
	"fulfillment/internal/core/domain/model/wave"
	"fulfillment/internal/pkg/errs"
)

func (suite *PostgresIntegrationTestSuite) TestOrderRepository_GetByIDs() {
	ctx := context.Background()
	first := suite.seedOrder(`[{"sku":"A","productName":"Apple","binLocation":"A-1","quantity":2}]`)
	second := suite.seedOrder(`[]`)
	repo := suite.factory.Create().OrderRepository()

	orders, err := repo.GetByIDs(ctx, []kernel.UUID{second.ID(), first.ID()})
	suite.Require().NoError(err)
	suite.Require().Len(orders, 2)
	suite.Equal(second.ID(), orders[0].ID(), "result keeps the requested order")

	cart, err := orders[1].Cart()
	suite.Require().NoError(err)
	suite.Require().Len(cart, 1)
	suite.Equal("A-1", cart[0].BinLocation)

	missing := kernel.NewUUID()
	_, err = repo.GetByIDs(ctx, []kernel.UUID{first.ID(), missing})
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	suite.Contains(err.Error(), missing.String())
}

func (suite *PostgresIntegrationTestSuite) TestPickerRepository_ListActive() {
	ctx := context.Background()
	suite.seedPicker("Zed", true)
	suite.seedPicker("Ann", true)
	suite.seedPicker("Old", false)

	pickers, err := suite.factory.Create().PickerRepository().ListActive(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(pickers, 2)
	suite.Equal("Ann", pickers[0].Name())
	suite.Equal([]string{"picking:execute"}, pickers[0].Permissions())
}

func (suite *PostgresIntegrationTestSuite) TestWaveRepository_RoundTripsItemsAndFEFO() {
	ctx := context.Background()
	repo := suite.factory.Create().WaveRepository()
	w := suite.newWave("WV-RT", kernel.PriorityUrgent, now.Add(2*time.Hour))
	suite.Require().NoError(repo.Add(ctx, w))

	got, err := repo.Get(ctx, w.ID())
	suite.Require().NoError(err)
	suite.Equal(kernel.PriorityUrgent, got.Priority())
	suite.Equal(3, got.TotalItems())
	suite.True(got.Options().FEFORequired)
	suite.True(w.SLADeadline().Equal(got.SLADeadline()))

	items := got.Items()
	suite.Require().Len(items, 2)
	suite.Equal("A", items[0].SKU())
	suite.Require().NotNil(items[0].FEFO())
	suite.Equal("B-202603", items[0].FEFO().Batch)
	suite.Nil(items[1].FEFO())
}

func (suite *PostgresIntegrationTestSuite) TestWaveRepository_UpdatePersistsItemProgress() {
	ctx := context.Background()
	repo := suite.factory.Create().WaveRepository()
	picker := kernel.NewUUID()
	w := suite.newWave("WV-UPD", kernel.PriorityHigh, now.Add(time.Hour))
	suite.Require().NoError(repo.Add(ctx, w))

	suite.Require().NoError(w.AssignTo(picker, now))
	suite.Require().NoError(w.StartPicking(picker, now))
	_, err := w.Scan(picker, "A", "A-1", 2, now)
	suite.Require().NoError(err)
	suite.Require().NoError(repo.Update(ctx, w))

	got, err := repo.Get(ctx, w.ID())
	suite.Require().NoError(err)
	suite.Equal(wave.StatusPicking, got.Status())
	suite.Require().NotNil(got.PickerID())
	suite.Equal(picker, *got.PickerID())
	suite.Equal(wave.ItemStatusPicked, got.Items()[0].Status())
	suite.Equal(2, got.PickedQuantity())
}

func (suite *PostgresIntegrationTestSuite) TestWaveRepository_ConcurrentScansKeepBothPicks() {
	ctx := context.Background()
	picker := kernel.NewUUID()
	w := suite.newWave("WV-RACE", kernel.PriorityHigh, now.Add(time.Hour))
	suite.Require().NoError(w.AssignTo(picker, now))
	suite.Require().NoError(w.StartPicking(picker, now))
	suite.Require().NoError(suite.factory.Create().WaveRepository().Add(ctx, w))

	first := suite.factory.Create()
	suite.Require().NoError(first.Begin(ctx))
	defer func() { _ = first.Rollback(ctx) }()
	held, err := first.WaveRepository().Get(ctx, w.ID())
	suite.Require().NoError(err)

	loaded := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		second := suite.factory.Create()
		if err := second.Begin(ctx); err != nil {
			close(loaded)
			done <- err
			return
		}
		defer func() { _ = second.Rollback(ctx) }()
		repo := second.WaveRepository()
		other, err := repo.Get(ctx, w.ID())
		close(loaded)
		if err != nil {
			done <- err
			return
		}
		if _, err = other.Scan(picker, "B", "B-1", 1, now); err != nil {
			done <- err
			return
		}
		if err = repo.Update(ctx, other); err != nil {
			done <- err
			return
		}
		done <- second.Commit(ctx)
	}()

	select {
	case <-loaded:
		suite.FailNow("second transaction read the wave while the first held it")
	case <-time.After(300 * time.Millisecond):
	}

	_, err = held.Scan(picker, "A", "A-1", 2, now)
	suite.Require().NoError(err)
	suite.Require().NoError(first.WaveRepository().Update(ctx, held))
	suite.Require().NoError(first.Commit(ctx))

	select {
	case err = <-done:
		suite.Require().NoError(err)
	case <-time.After(10 * time.Second):
		suite.FailNow("second transaction never finished")
	}

	got, err := suite.factory.Create().WaveRepository().Get(ctx, w.ID())
	suite.Require().NoError(err)
	suite.Equal(3, got.PickedQuantity())
	for _, item := range got.Items() {
		suite.Equal(wave.ItemStatusPicked, item.Status(), item.SKU())
	}
}

func (suite *PostgresIntegrationTestSuite) TestWaveRepository_ListUnassignedLocksRows() {
	ctx := context.Background()
	w := suite.newWave("WV-LOCKED", kernel.PriorityHigh, now.Add(time.Hour))
	suite.Require().NoError(suite.factory.Create().WaveRepository().Add(ctx, w))

	first := suite.factory.Create()
	suite.Require().NoError(first.Begin(ctx))
	defer func() { _ = first.Rollback(ctx) }()
	waves, err := first.WaveRepository().ListUnassigned(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(waves, 1)

	done := make(chan []*wave.Wave, 1)
	go func() {
		second := suite.factory.Create()
		if err := second.Begin(ctx); err != nil {
			done <- nil
			return
		}
		defer func() { _ = second.Rollback(ctx) }()
		pending, _ := second.WaveRepository().ListUnassigned(ctx)
		done <- pending
	}()

	picker := kernel.NewUUID()
	suite.Require().NoError(waves[0].AssignTo(picker, now))
	suite.Require().NoError(first.WaveRepository().Update(ctx, waves[0]))
	suite.Require().NoError(first.Commit(ctx))

	select {
	case pending := <-done:
		suite.NotNil(pending)
		suite.Empty(pending, "an assigned wave is not offered again")
	case <-time.After(10 * time.Second):
		suite.FailNow("second listing never finished")
	}
}

func (suite *PostgresIntegrationTestSuite) TestWaveRepository_UpdateUnknownWave() {
	ctx := context.Background()
	w := suite.newWave("WV-GHOST", kernel.PriorityHigh, now.Add(time.Hour))

	err := suite.factory.Create().WaveRepository().Update(ctx, w)
	suite.Require().Error(err)
}

func (suite *PostgresIntegrationTestSuite) TestWaveRepository_ListUnassignedAndCounts() {
	ctx := context.Background()
	repo := suite.factory.Create().WaveRepository()
	low := suite.newWave("WV-LOW", kernel.PriorityLow, now.Add(time.Hour))
	urgent := suite.newWave("WV-URGENT", kernel.PriorityUrgent, now.Add(3*time.Hour))
	taken := suite.newWave("WV-TAKEN", kernel.PriorityUrgent, now.Add(time.Hour))
	picker := kernel.NewUUID()
	suite.Require().NoError(taken.AssignTo(picker, now))
	for _, w := range []*wave.Wave{low, urgent, taken} {
		suite.Require().NoError(repo.Add(ctx, w))
	}

	unassigned, err := repo.ListUnassigned(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(unassigned, 2)
	suite.Equal("WV-URGENT", unassigned[0].Number())
	suite.Len(unassigned[0].Items(), 2)

	counts, err := repo.CountActiveByPicker(ctx)
	suite.Require().NoError(err)
	suite.Equal(map[kernel.UUID]int{picker: 1}, counts)
}

func (suite *PostgresIntegrationTestSuite) TestWaveRepository_AddException() {
	ctx := context.Background()
	repo := suite.factory.Create().WaveRepository()
	picker := kernel.NewUUID()
	w := suite.newWave("WV-EXC", kernel.PriorityHigh, now.Add(time.Hour))
	suite.Require().NoError(w.AssignTo(picker, now))
	suite.Require().NoError(w.StartPicking(picker, now))
	suite.Require().NoError(repo.Add(ctx, w))

	_, exception, err := w.ReportPartialPick(picker, wave.PartialPick{
		SKU: "A", BinLocation: "A-1", PickedQuantity: 1, Reason: wave.ReasonExpiry,
	}, now)
	suite.Require().NoError(err)
	suite.Require().NotNil(exception)
	suite.Require().NoError(repo.AddException(ctx, exception))

	var severity string
	suite.Require().NoError(suite.db.Table("picking_exceptions").
		Select("severity").Where("wave_id = ?", w.ID().Bytes()).Scan(&severity).Error)
	suite.Equal("HIGH", severity)
}

func (suite *PostgresIntegrationTestSuite) TestPackingJobRepository_SecondJobForWaveConflicts() {
	ctx := context.Background()
	repo := suite.factory.Create().PackingJobRepository()
	waveID := kernel.NewUUID()
	first, _ := suite.newJob("PJ-1", waveID)
	second, _ := suite.newJob("PJ-2", waveID)

	suite.Require().NoError(repo.Add(ctx, first))
	err := repo.Add(ctx, second)
	suite.Require().ErrorIs(err, errs.ErrConflict)
}

func (suite *PostgresIntegrationTestSuite) TestPackingJobRepository_CompleteStoresEvidence() {
	ctx := context.Background()
	repo := suite.factory.Create().PackingJobRepository()
	job, orderID := suite.newJob("PJ-EVID", kernel.NewUUID())
	suite.Require().NoError(repo.Add(ctx, job))

	_, err := job.VerifyItem(orderID, "A", 2, now)
	suite.Require().NoError(err)
	lat := -6.2
	suite.Require().NoError(job.Complete(
		[]packing.PhotoEvidence{{PhotoURL: "https://photos/p1.jpg", PhotoType: "PACKAGE", CapturedAt: now, Latitude: &lat}},
		[]packing.Seal{{SealNumber: "S-001", SealType: "TAMPER", AppliedAt: now}},
		now,
	))
	suite.Require().NoError(repo.Update(ctx, job))
	// a second write must not duplicate evidence
	suite.Require().NoError(repo.Update(ctx, job))

	got, err := repo.Get(ctx, job.ID())
	suite.Require().NoError(err)
	suite.Equal(packing.StatusAwaitingHandover, got.Status())
	suite.Equal(2, got.PackedItems())
	suite.Require().Len(got.Photos(), 1)
	suite.Require().NotNil(got.Photos()[0].Latitude)
	suite.InDelta(-6.2, *got.Photos()[0].Latitude, 0.0001)
	suite.Require().Len(got.Seals(), 1)
	suite.Equal("S-001", got.Seals()[0].SealNumber)
}

func (suite *PostgresIntegrationTestSuite) TestPackingJobRepository_GetUnknown() {
	_, err := suite.factory.Create().PackingJobRepository().Get(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *PostgresIntegrationTestSuite) TestHandoverRepository_OneLiveHandoverPerJob() {
	ctx := context.Background()
	repo := suite.factory.Create().HandoverRepository()
	jobID := kernel.NewUUID()
	newHandover := func(number string) *handover.Handover {
		h, err := handover.NewHandover(handover.NewHandoverParams{
			ID: kernel.NewUUID(), Number: number, JobID: jobID, RiderID: kernel.NewUUID(), AssignedAt: now,
		})
		suite.Require().NoError(err)
		return h
	}

	first := newHandover("HO-1")
	suite.Require().NoError(repo.Add(ctx, first))
	suite.Require().ErrorIs(repo.Add(ctx, newHandover("HO-2")), errs.ErrConflict)

	suite.Require().NoError(first.TransitionTo(handover.StatusCancelled, handover.StatusDetails{CancellationReason: "rider sick"}, now))
	suite.Require().NoError(repo.Update(ctx, first))
	suite.Require().NoError(repo.Add(ctx, newHandover("HO-3")), "a cancelled handover frees the job")

	got, err := repo.Get(ctx, first.ID())
	suite.Require().NoError(err)
	suite.Equal(handover.StatusCancelled, got.Status())
	suite.True(now.Add(handover.DefaultSLAWindow).Equal(got.SLADeadline()))
}

func (suite *PostgresIntegrationTestSuite) TestShipmentRepository_Add() {
	ctx := context.Background()
	err := suite.factory.Create().ShipmentRepository().Add(ctx, handover.Shipment{
		ID:              kernel.NewUUID(),
		HandoverID:      kernel.NewUUID(),
		LMSReference:    "LMS-1",
		TrackingNumber:  "TRK-1",
		Status:          "CREATED",
		ResponsePayload: []byte(`{"shipmentId":"LMS-1"}`),
		CreatedAt:       now,
	})
	suite.Require().NoError(err)

	var reference string
	suite.Require().NoError(suite.db.Table("lms_shipments").
		Select("response_payload->>'shipmentId'").Scan(&reference).Error)
	suite.Equal("LMS-1", reference)
}

func (suite *PostgresIntegrationTestSuite) TestRetryLedger_SaveReplacesAndDueFilters() {
	ctx := context.Background()
	ledger := suite.factory.Create().RetryLedger()
	handoverID := kernel.NewUUID()

	entry := handover.RetryEntry{
		ID:            kernel.NewUUID(),
		HandoverID:    handoverID,
		Operation:     handover.OperationCreateShipment,
		Attempts:      1,
		NextAttemptAt: now.Add(-time.Minute),
		LastError:     "timeout",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	suite.Require().NoError(ledger.Save(ctx, entry))

	entry.ID = kernel.NewUUID()
	entry.Attempts = 2
	entry.LastError = "502"
	suite.Require().NoError(ledger.Save(ctx, entry))

	got, err := ledger.Get(ctx, handoverID, handover.OperationCreateShipment)
	suite.Require().NoError(err)
	suite.Equal(2, got.Attempts)
	suite.Equal("502", got.LastError)

	exhausted := handover.RetryEntry{
		ID: kernel.NewUUID(), HandoverID: kernel.NewUUID(), Operation: handover.OperationUpdateStatus,
		TargetStatus: "DELIVERED", Attempts: 5, NextAttemptAt: now.Add(-time.Hour), CreatedAt: now, UpdatedAt: now,
	}
	later := handover.RetryEntry{
		ID: kernel.NewUUID(), HandoverID: kernel.NewUUID(), Operation: handover.OperationCreateShipment,
		Attempts: 1, NextAttemptAt: now.Add(time.Hour), CreatedAt: now, UpdatedAt: now,
	}
	suite.Require().NoError(ledger.Save(ctx, exhausted))
	suite.Require().NoError(ledger.Save(ctx, later))

	due, err := ledger.Due(ctx, now, 5, 10)
	suite.Require().NoError(err)
	suite.Require().Len(due, 1)
	suite.Equal(handoverID, due[0].HandoverID)

	suite.Require().NoError(ledger.Delete(ctx, handoverID, handover.OperationCreateShipment))
	_, err = ledger.Get(ctx, handoverID, handover.OperationCreateShipment)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}
