// Package main provides the entry point for GoCinema, a cinema management
// backend. It serves users, films and roles as JSON over a fiber web server,
// authenticates callers by password, session cookie or bearer token and
// gates every change with role based authorization. The application uses
// gorm for data persistence and cobra for its command line.
package main
