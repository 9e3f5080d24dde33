// @title                       Agentcy API
// @version                     1.0
// @description                 Prompt-to-code generation backend.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import "github.com/the-lucky-clover/agentcy-one/internal/app"

func main() {
	app.Run()
}
