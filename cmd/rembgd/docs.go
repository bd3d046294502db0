package main

// General API documentation for swaggo. Run `make swagger-gen` to regenerate docs.
//
// @title           rembgd API
// @version         1.0
// @description     HTTP API for image background removal.
//
// @contact.name   rembgd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
