package server

//go:generate swag init -g internal/server/server.go -o docs

// @title SafeLink API
// @version 1.0
// @description URL phishing risk scanning for educational portals and form services.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
