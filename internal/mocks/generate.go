package mocks

//go:generate mockery --name LogStore --srcpkg github.com/audit-lab/audit-service/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name Authorizer --srcpkg github.com/audit-lab/audit-service/internal/authz --output ./authz --outpkg authzmocks --with-expecter
