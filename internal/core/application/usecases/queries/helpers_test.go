package queries_test

import (
	"fulfillment/internal/adapters/out/postgres/riderrepo"
	"fulfillment/internal/core/domain/model/rider"
)

func riderDTO(r *rider.Rider) riderrepo.RiderDTO {
	return riderrepo.FromDomain(r)
}

func ptr[T any](v T) *T {
	return &v
}
