package main

import "github.com/ZSabina88/Serverless-API-Cognito-Integration/cmd"

func main() {
	cmd.Execute()
}
