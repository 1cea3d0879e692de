package services

import (
	"fmt"
	"math/rand/v2"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/wave"
	"fulfillment/internal/pkg/errs"
)

const (
	DefaultMaxOrdersPerWave = 20
	WaveSLAWindow           = 24 * time.Hour

	WaveNumberPrefix = "WV"

	fefoMinDays = 30
	fefoMaxDays = 180
)

// NumberSource hands out human-facing document numbers.
type NumberSource interface {
	Next(prefix string) string
}

// CartIssue reports an order whose cart could not be parsed and was treated
// as empty.
type CartIssue struct {
	OrderID kernel.UUID
	Err     error
}

type GenerateParams struct {
	Orders           []*order.Order
	Priority         kernel.Priority
	MaxOrdersPerWave int
	Options          wave.Options
	Now              time.Time
}

// WaveGenerator splits orders into chunks of at most MaxOrdersPerWave and
// builds one wave per chunk. Every cart line becomes a picklist item; scan
// sequences are a shuffled permutation across the wave.
type WaveGenerator struct {
	numbers NumberSource
	rnd     *rand.Rand
}

func NewWaveGenerator(numbers NumberSource, rnd *rand.Rand) WaveGenerator {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return WaveGenerator{numbers: numbers, rnd: rnd}
}

func (g WaveGenerator) Generate(p GenerateParams) ([]*wave.Wave, []CartIssue, error) {
	if len(p.Orders) == 0 {
		return nil, nil, errs.NewValueIsRequiredError("orderIds")
	}
	if err := p.Priority.Validate(); err != nil {
		return nil, nil, err
	}
	chunkSize := p.MaxOrdersPerWave
	if chunkSize <= 0 {
		chunkSize = DefaultMaxOrdersPerWave
	}

	waves := make([]*wave.Wave, 0, (len(p.Orders)+chunkSize-1)/chunkSize)
	var issues []CartIssue

	for start := 0; start < len(p.Orders); start += chunkSize {
		chunk := p.Orders[start:min(start+chunkSize, len(p.Orders))]

		params, chunkIssues := g.expand(chunk, p.Options.FEFORequired, p.Now)
		issues = append(issues, chunkIssues...)

		items := make([]*wave.PicklistItem, 0, len(params))
		for _, ip := range params {
			item, err := wave.NewPicklistItem(ip)
			if err != nil {
				return nil, nil, err
			}
			items = append(items, item)
		}

		w, err := wave.NewWave(wave.NewWaveParams{
			ID:          kernel.NewUUID(),
			Number:      g.numbers.Next(WaveNumberPrefix),
			Priority:    p.Priority,
			Options:     p.Options,
			TotalOrders: len(chunk),
			Items:       items,
			SLADeadline: p.Now.Add(WaveSLAWindow),
			CreatedAt:   p.Now,
		})
		if err != nil {
			return nil, nil, err
		}
		waves = append(waves, w)
	}

	return waves, issues, nil
}

func (g WaveGenerator) expand(orders []*order.Order, fefo bool, now time.Time) ([]wave.NewItemParams, []CartIssue) {
	var params []wave.NewItemParams
	var issues []CartIssue

	for _, o := range orders {
		lines, err := o.Cart()
		if err != nil {
			issues = append(issues, CartIssue{OrderID: o.ID(), Err: err})
		}
		for _, line := range lines {
			params = append(params, wave.NewItemParams{
				OrderID:     o.ID(),
				SKU:         line.SKU,
				ProductName: line.ProductName,
				BinLocation: line.BinLocation,
				Quantity:    line.Quantity,
			})
		}
	}

	perm := g.rnd.Perm(len(params))
	for i := range params {
		params[i].ScanSequence = perm[i] + 1
		if fefo {
			params[i].FEFO = g.fefoBatch(now)
		}
	}
	return params, issues
}

// fefoBatch tags an item with a synthetic batch expiring 30 to 180 days out.
func (g WaveGenerator) fefoBatch(now time.Time) *wave.FEFOBatch {
	expiry := now.AddDate(0, 0, fefoMinDays+g.rnd.IntN(fefoMaxDays-fefoMinDays+1))
	return &wave.FEFOBatch{
		Batch:      fmt.Sprintf("BATCH-%s-%03d", expiry.Format("20060102"), g.rnd.IntN(1000)),
		ExpiryDate: expiry,
	}
}
