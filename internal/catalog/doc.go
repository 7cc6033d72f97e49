// Package catalog loads capability definitions from YAML files and registers
// them with a registry.
//
// Each file holds one tool or prompt:
//
//	kind: prompt
//	name: quiver__summarize
//	description: Summarize a piece of text
//	version: 1.2.0
//	tags: [text, summary]
//	arguments:
//	  - name: text
//	    required: true
//	messages:
//	  - role: user
//	    content: "Summarize: {{ .text | trunc 500 }}"
//
// Tools declare an inputSchema and a response instead of arguments and
// messages. Message content and responses are text/template templates with
// the sprig function library. Required arguments and required schema
// properties become the entry's input validation.
//
// A Watcher keeps the registry in sync with the directory while the server
// runs.
package catalog
