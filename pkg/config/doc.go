/*
Package config loads the optional parafs configuration file.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+-----+ +----+----+ +-----+-----+
	|   YAML    | |  JSON   | |    HCL    |
	|  Parser   | | Parser  | |  Parser   |
	+-----------+ +---------+ +-----------+

🎯 Purpose:
- Provides defaults for flags that users set on every run
- Supports YAML, JSON and HCL with the same schema
- Rejects unknown fields so typos surface immediately

🔄 Flow:
 1. Find looks for .parafs.yaml, .parafs.yml, .parafs.json or .parafs.hcl
 2. Load picks the parser registered for the file extension
 3. Validate applies defaults and checks values
 4. Command line flags override whatever the file set

⚡ Fields:
  - concurrency: worker pool size (default: twice the CPU count)
  - force: chmod and retry once when removal is denied
  - verify: re-read copied files and compare xxhash64 digests
  - preserve: copy permission bits and modification times (default: true)
  - progress: force the live progress line on or off (default: when stderr is a terminal)
  - exclude: doublestar patterns skipped during the walk
  - journal: sqlite file recording every outcome
  - metrics_file: prometheus textfile written after the run

🔍 Example:

	# .parafs.hcl
	concurrency = 32
	force       = true
	exclude     = [".git", "*.swp"]

	cfg, err := config.Load(ctx, ".parafs.hcl")
	if err != nil {
		return err
	}
*/
package config
