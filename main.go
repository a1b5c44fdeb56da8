package main

import "budget/cmd"

// @title Budget Tracker API
// @version 1.0
// @description Personal budget tracking: categories, transactions, dashboard and reports
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cmd.Execute()
}
