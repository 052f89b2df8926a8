package server

// instructions is the server-level guidance handed to MCP clients.
const instructions = `SysScope console: drives a remote system-diagnostics backend.

Typical flow:
1. sysscope_system — inspect the host the backend is attached to.
2. sysscope_plan action=generate — fetch a fresh diagnostic test plan.
3. sysscope_plan action=toggle — enable/disable individual test items.
4. sysscope_execute action=start — submit the enabled items; the console
   polls progress in the background.
5. sysscope_execute action=status — live per-item status, settlement flag
   and summary counts. Poll this until settled is true.
6. sysscope_reports — list, read, or full-text search generated reports.

The plan is frozen while a run is in progress; cancel the run
(sysscope_execute action=cancel) to edit it again.`
