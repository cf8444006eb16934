// Package platform contains OS integration and external tooling glue:
// download directories, playlist listing via the ytdlp library, and
// revealing finished files in the system file manager.
package platform
