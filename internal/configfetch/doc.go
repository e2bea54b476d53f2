// Package configfetch downloads published configuration namespaces over HTTP.
package configfetch
