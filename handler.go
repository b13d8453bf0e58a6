package main

import (
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/funny-falcon/runlen/runlen"
	"github.com/funny-falcon/runlen/slab"
)

var jsonConfig = jsoniter.Config{
	OnlyTaggedField: true,
	CaseSensitive:   true,
}.Froze()

var errTooLong = errors.New("sequence exceeds buffer capacity")
var errTrailing = errors.New("trailing data after array")

type Service struct {
	Counter runlen.Counter
	Pool    *slab.Pool
	trim    *Once
}

func NewService(counter runlen.Counter, pool *slab.Pool, trim time.Duration) *Service {
	s := &Service{
		Counter: counter,
		Pool:    pool,
	}
	s.trim = NewOnce(s.release, trim)
	return s
}

func (s *Service) release() {
	if err := s.Pool.Release(); err != nil {
		logger.Warn("releasing scratch buffers", zap.Error(err))
	}
}

func (s *Service) Close() {
	s.trim.Stop()
	s.release()
}

func (s *Service) Handler(ctx *fasthttp.RequestCtx) {
	reqID := string(ctx.Request.Header.Peek("X-Request-Id"))
	if reqID == "" {
		reqID = uuid.NewString()
	}
	ctx.Response.Header.Set("X-Request-Id", reqID)
	logf("%s %s %s", reqID, ctx.Method(), ctx.RequestURI())

	switch path := string(ctx.Path()); path {
	case "/count", "/compact":
		if !ctx.IsPost() {
			ctx.SetStatusCode(405)
			return
		}
		s.doCount(ctx, path == "/compact")
	case "/selfcheck":
		if !ctx.IsGet() {
			ctx.SetStatusCode(405)
			return
		}
		doSelfCheck(ctx)
	default:
		ctx.SetStatusCode(404)
	}
}

func (s *Service) counterFor(args *fasthttp.Args) (runlen.Counter, bool) {
	c := s.Counter
	if p := args.Peek("policy"); len(p) > 0 {
		policy, err := runlen.ParsePolicy(string(p))
		if err != nil {
			logf("bad policy: %v", err)
			return c, false
		}
		c.Policy = policy
	}
	if w := args.Peek("weight"); len(w) > 0 {
		n, err := strconv.ParseUint(string(w), 10, 32)
		if err != nil || n == 0 {
			logf("bad weight %q", w)
			return c, false
		}
		c.Weight = uint32(n)
	}
	return c, true
}

func (s *Service) doCount(ctx *fasthttp.RequestCtx, compact bool) {
	counter, ok := s.counterFor(ctx.QueryArgs())
	if !ok {
		ctx.SetStatusCode(400)
		return
	}

	buf, err := s.Pool.Get()
	if err != nil {
		logger.Error("scratch buffer", zap.Error(err))
		ctx.SetStatusCode(503)
		return
	}
	defer func() {
		s.Pool.Put(buf)
		s.trim.Reset()
	}()

	iter := jsonConfig.BorrowIterator(ctx.PostBody())
	values, err := readValues(iter, buf)
	jsonConfig.ReturnIterator(iter)
	if err == errTooLong {
		ctx.SetStatusCode(413)
		return
	}
	if err != nil {
		logf("count body: %v", err)
		ctx.SetStatusCode(400)
		return
	}

	stream := jsonConfig.BorrowStream(nil)
	stream.WriteObjectStart()
	var counts runlen.Counts
	if compact {
		var distinct []uint32
		distinct, counts = counter.Compact(values)
		stream.WriteObjectField("values")
		writeUint32s(stream, distinct)
	} else {
		counts = counter.Count(values)
		stream.WriteObjectField("sorted")
		writeUint32s(stream, values)
	}
	stream.WriteMore()
	stream.WriteObjectField("counts")
	writeCounts(stream, counts)
	stream.WriteMore()
	stream.WriteObjectField("sum")
	stream.WriteUint64(counts.Sum())
	stream.WriteObjectEnd()

	ctx.SetStatusCode(200)
	ctx.SetContentType("application/json")
	ctx.SetBody(stream.Buffer())
	jsonConfig.ReturnStream(stream)
}

func doSelfCheck(ctx *fasthttp.RequestCtx) {
	counts := runlen.SelfCheck()
	stream := jsonConfig.BorrowStream(nil)
	stream.WriteObjectStart()
	stream.WriteObjectField("length")
	stream.WriteInt(runlen.SelfCheckLen)
	stream.WriteMore()
	stream.WriteObjectField("counts")
	writeCounts(stream, counts)
	stream.WriteMore()
	stream.WriteObjectField("sum")
	stream.WriteUint64(counts.Sum())
	stream.WriteObjectEnd()

	ctx.SetStatusCode(200)
	ctx.SetContentType("application/json")
	ctx.SetBody(stream.Buffer())
	jsonConfig.ReturnStream(stream)
}

// readValues appends a JSON array of unsigned integers to buf without
// growing it past its capacity. Only whitespace may follow the array.
func readValues(iter *jsoniter.Iterator, buf []uint32) ([]uint32, error) {
	for iter.ReadArray() {
		if len(buf) == cap(buf) {
			return buf, errTooLong
		}
		buf = append(buf, iter.ReadUint32())
	}
	if iter.Error != nil {
		return buf, iter.Error
	}
	if iter.WhatIsNext(); iter.Error != io.EOF {
		return buf, errTrailing
	}
	return buf, nil
}

func writeUint32s(stream *jsoniter.Stream, vals []uint32) {
	stream.WriteArrayStart()
	for i, v := range vals {
		if i != 0 {
			stream.WriteMore()
		}
		stream.WriteUint32(v)
	}
	stream.WriteArrayEnd()
}

func writeCounts(stream *jsoniter.Stream, counts runlen.Counts) {
	stream.WriteArrayStart()
	for i, v := range counts {
		if i != 0 {
			stream.WriteMore()
		}
		stream.WriteUint64(v)
	}
	stream.WriteArrayEnd()
}
