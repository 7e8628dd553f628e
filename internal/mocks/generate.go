package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name StatsSource --dir ../usecase --output usecase --outpkg usecasemock --filename stats_source_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name StatsProvider --dir ../usecase --output usecase --outpkg usecasemock --filename stats_provider_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name OddsProvider --dir ../usecase --output usecase --outpkg usecasemock --filename odds_provider_mock.go
