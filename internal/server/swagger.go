package server

//go:generate swag init -g internal/server/swagger.go -d ../../ -o ../../docs/swagger

// @title phishscan API
// @version 1.0
// @description Scores a URL for phishing risk: lexical heuristics, favicon fingerprint and third-party enrichment.
// @contact.name phishscan maintainers
// @contact.url https://github.com/raysh454/phishscan
// @BasePath /
