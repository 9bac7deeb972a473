package engine

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	_ "github.com/go-sql-driver/mysql"

	"github.com/jmartens/shopvault/internal/core/domain"
)

// mysqlDumper dumps via the native mysqldump binary and falls back to an
// in-process dump over the wire protocol when the binary is missing or
// fails. Restore mirrors that: pipe into the mysql client, then replay the
// statements in-process.
type mysqlDumper struct {
	log *logrus.Entry
}

func NewMySQLDumper() Dumper {
	return &mysqlDumper{
		log: logrus.WithField("component", "engine.mysql"),
	}
}

func (d *mysqlDumper) Name() string {
	return EngineMySQL
}

func (d *mysqlDumper) Dump(ctx context.Context, opts DumpOptions) (*DumpResult, error) {
	outPath := opts.OutputPath
	if opts.Compress {
		outPath += ".gz"
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	err := d.dumpNative(ctx, opts, outPath)
	if err != nil {
		d.log.WithError(err).Warn("mysqldump failed, falling back to in-process dump")
		if err := d.dumpInProcess(ctx, opts, outPath); err != nil {
			return nil, err
		}
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat dump file: %w", err)
	}

	return &DumpResult{Path: outPath, Size: info.Size()}, nil
}

func (d *mysqlDumper) dumpNative(ctx context.Context, opts DumpOptions, outPath string) error {
	s := opts.Settings
	binary := s.DumpBinary
	if binary == "" {
		binary = "mysqldump"
	}

	args := []string{
		"--single-transaction",
		"--quick",
		"--routines",
		"--triggers",
		fmt.Sprintf("--host=%s", s.DBHost),
		fmt.Sprintf("--port=%d", s.DBPort),
		fmt.Sprintf("--user=%s", s.DBUser),
		s.DBName,
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Env = append(os.Environ(), "MYSQL_PWD="+s.DBPassword)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open mysqldump stdout: %w", err)
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start mysqldump: %w", err)
	}

	if err := writeDumpStream(opts, outPath, stdout); err != nil {
		cmd.Wait()
		return err
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("mysqldump failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return nil
}

// dumpInProcess enumerates tables and writes CREATE TABLE plus batched
// INSERT statements over a direct connection.
func (d *mysqlDumper) dumpInProcess(ctx context.Context, opts DumpOptions, outPath string) error {
	db, err := d.connect(opts.Settings)
	if err != nil {
		return err
	}
	defer db.Close()

	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go streamDumpToFile(opts, outPath, pr, done)

	werr := d.writeSQLDump(ctx, db, pw)
	pw.CloseWithError(werr)
	if err := <-done; err != nil {
		return err
	}
	return werr
}

// streamDumpToFile drains the pipe into the dump file. The reader is closed
// with the outcome so a failed file write unblocks the producing side
// instead of leaving it stuck on the pipe.
func streamDumpToFile(opts DumpOptions, outPath string, pr *io.PipeReader, done chan<- error) {
	err := writeDumpStream(opts, outPath, pr)
	pr.CloseWithError(err)
	done <- err
}

func (d *mysqlDumper) writeSQLDump(ctx context.Context, db *sqlx.DB, w io.Writer) error {
	bw := bufio.NewWriter(w)

	var tables []string
	if err := db.SelectContext(ctx, &tables, "SHOW TABLES"); err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	fmt.Fprintln(bw, "SET FOREIGN_KEY_CHECKS=0;")

	for _, table := range tables {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var name, ddl string
		row := db.QueryRowContext(ctx, fmt.Sprintf("SHOW CREATE TABLE `%s`", table))
		if err := row.Scan(&name, &ddl); err != nil {
			return fmt.Errorf("failed to read schema for %s: %w", table, err)
		}

		fmt.Fprintf(bw, "DROP TABLE IF EXISTS `%s`;\n%s;\n", table, ddl)

		if err := d.writeTableRows(ctx, db, bw, table); err != nil {
			return err
		}
	}

	fmt.Fprintln(bw, "SET FOREIGN_KEY_CHECKS=1;")

	return bw.Flush()
}

const insertBatchSize = 500

func (d *mysqlDumper) writeTableRows(ctx context.Context, db *sqlx.DB, w io.Writer, table string) error {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM `%s`", table))
	if err != nil {
		return fmt.Errorf("failed to read rows from %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	values := make([]interface{}, len(cols))
	targets := make([]interface{}, len(cols))
	for i := range values {
		targets[i] = &values[i]
	}

	batch := make([]string, 0, insertBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		_, err := fmt.Fprintf(w, "INSERT INTO `%s` VALUES\n%s;\n", table, strings.Join(batch, ",\n"))
		batch = batch[:0]
		return err
	}

	for rows.Next() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := rows.Scan(targets...); err != nil {
			return fmt.Errorf("failed to scan row of %s: %w", table, err)
		}
		batch = append(batch, renderRow(values))
		if len(batch) >= insertBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows of %s: %w", table, err)
	}

	return flush()
}

func renderRow(values []interface{}) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = renderValue(v)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func renderValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return quoteSQLString(string(val))
	case string:
		return quoteSQLString(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func quoteSQLString(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		"\x00", `\0`,
		"\n", `\n`,
		"\r", `\r`,
		"\x1a", `\Z`,
	)
	return "'" + r.Replace(s) + "'"
}

func (d *mysqlDumper) Restore(ctx context.Context, opts RestoreOptions) error {
	err := d.restoreNative(ctx, opts)
	if err == nil {
		return nil
	}
	d.log.WithError(err).Warn("mysql client restore failed, falling back to statement replay")
	return d.restoreInProcess(ctx, opts)
}

func (d *mysqlDumper) restoreNative(ctx context.Context, opts RestoreOptions) error {
	s := opts.Settings
	binary := s.ClientBinary
	if binary == "" {
		binary = "mysql"
	}

	r, closeFn, err := openDumpStream(opts.InputPath)
	if err != nil {
		return err
	}
	defer closeFn()

	args := []string{
		fmt.Sprintf("--host=%s", s.DBHost),
		fmt.Sprintf("--port=%d", s.DBPort),
		fmt.Sprintf("--user=%s", s.DBUser),
		s.DBName,
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Env = append(os.Environ(), "MYSQL_PWD="+s.DBPassword)
	cmd.Stdin = r
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("mysql client failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return nil
}

// restoreInProcess replays statements one at a time. A failing statement is
// logged and skipped so a partially incompatible dump still restores what
// it can.
func (d *mysqlDumper) restoreInProcess(ctx context.Context, opts RestoreOptions) error {
	db, err := d.connect(opts.Settings)
	if err != nil {
		return err
	}
	defer db.Close()

	r, closeFn, err := openDumpStream(opts.InputPath)
	if err != nil {
		return err
	}
	defer closeFn()

	var skipped int
	scanner := newStatementScanner(r)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		stmt := strings.TrimSpace(scanner.Text())
		if stmt == "" || strings.HasPrefix(stmt, "--") || strings.HasPrefix(stmt, "/*") {
			continue
		}

		if _, err := db.ExecContext(ctx, stmt); err != nil {
			skipped++
			d.log.WithError(err).WithField("statement", truncate(stmt, 120)).
				Warn("skipping failed statement during replay")
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read dump: %w", err)
	}

	if skipped > 0 {
		d.log.WithField("skipped", skipped).Warn("replay completed with skipped statements")
	}

	return nil
}

func (d *mysqlDumper) connect(s *domain.Settings) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
		s.DBUser, s.DBPassword, s.DBHost, s.DBPort, s.DBName)
	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}
	return db, nil
}

// newStatementScanner splits a SQL stream on semicolon-terminated lines.
// mysqldump output terminates every statement at end of line, so a full
// SQL tokenizer is not needed here.
func newStatementScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	scanner.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}
		if i := strings.Index(string(data), ";\n"); i >= 0 {
			return i + 2, data[:i+1], nil
		}
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	})
	return scanner
}

func writeDumpStream(opts DumpOptions, outPath string, r io.Reader) error {
	dst, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create dump file: %w", err)
	}
	defer dst.Close()

	var w io.Writer = dst
	var gz *gzip.Writer
	if opts.Compress {
		gz, err = gzip.NewWriterLevel(dst, compressionLevel(opts.Settings.CompressionLevel))
		if err != nil {
			return fmt.Errorf("invalid compression level: %w", err)
		}
		w = gz
	}

	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("failed to write dump stream: %w", err)
	}

	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("failed to finalize gzip stream: %w", err)
		}
	}
	return dst.Close()
}

func openDumpStream(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open dump file: %w", err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, f.Close, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	return gz, func() error {
		gz.Close()
		return f.Close()
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
