package main

import "loginpage/cmd"

// @title                       Login Page API
// @version                     1.0
// @description                 Account registration, email verification, login and logout.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cmd.Execute()
}
