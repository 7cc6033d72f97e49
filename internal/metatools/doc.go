// Package metatools exposes the registry's discovery surface and indirect
// execution as ordinary registry tools.
//
// Every meta-tool is registered under the registry's name prefix so it
// passes the same validation as any other entry:
//
//   - discover: run a discovery query (filters, sorting, pagination)
//   - describe: full projection of one tool or prompt
//   - statistics: aggregate counts and version figures
//   - categories: the distinct tags in use
//   - call_tool: execute any tool by name
//   - get_prompt: render any prompt by name
//
// call_tool and get_prompt reach deprecated entries too. Deprecated entries
// disappear from the advertised tool and prompt lists but stay executable,
// and these two tools are how a client reaches them.
//
// Meta-tools report failures as MCP error results rather than Go errors, so
// a client always receives a readable message.
//
// # Usage
//
//	reg := registry.NewDefault()
//	if err := metatools.NewProvider(reg).Register(); err != nil {
//	    return err
//	}
package metatools
