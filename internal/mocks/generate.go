package mocks

//go:generate mockery --name RecordStore --srcpkg github.com/luboil-lab/sales-ledger/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
