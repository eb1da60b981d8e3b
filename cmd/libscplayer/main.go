// Command libscplayer builds the C shared library:
//
//	go build -buildmode=c-shared -o libscplayer.so ./cmd/libscplayer
package main

/*
#include <stdbool.h>
#include <stdint.h>
#include <stdlib.h>
#include <pthread.h>

typedef void (*sc_pcm_callback)(const float *samples, uint32_t count);

static inline uint64_t sc_thread_key(void) {
	return (uint64_t)(uintptr_t)pthread_self();
}

static inline bool sc_load_flag(const bool *flag) {
	return __atomic_load_n(flag, __ATOMIC_ACQUIRE);
}

static inline void sc_invoke(sc_pcm_callback cb, const float *samples, uint32_t count) {
	cb(samples, count);
}
*/
import "C"

import (
	"context"
	"fmt"
	"os"
	"sync"
	"unsafe"

	"github.com/rs/zerolog"

	"github.com/xeptore/scplayer/boundary"
	"github.com/xeptore/scplayer/config"
	"github.com/xeptore/scplayer/log"
	"github.com/xeptore/scplayer/pcm"
	"github.com/xeptore/scplayer/pipeline"
)

var (
	sessionOnce sync.Once
	session     *boundary.Session
	sessionErr  error

	lastErrors = boundary.NewErrorSlots()
	logger     = newLogger()

	cstringsMux sync.Mutex
	cstrings    = make(map[boundary.Handle][]*C.char)
)

func main() {}

func newLogger() zerolog.Logger {
	switch os.Getenv("SCPLAYER_LOG") {
	case "debug":
		return log.NewPacked(os.Stderr).Level(zerolog.DebugLevel)
	case "trace":
		return log.NewPacked(os.Stderr).Level(zerolog.TraceLevel)
	default:
		return zerolog.Nop()
	}
}

func getSession() (*boundary.Session, error) {
	sessionOnce.Do(func() {
		cfg := config.Default()
		if v := os.Getenv("SCPLAYER_CONFIG"); v != "" {
			c, err := config.FromString(v)
			if nil != err {
				sessionErr = fmt.Errorf("%w: failed to load config: %v", boundary.ErrInvalidArgument, err)
				return
			}
			cfg = *c
		}
		session, sessionErr = boundary.NewSession(cfg, logger)
	})
	return session, sessionErr
}

func threadKey() uint64 {
	return uint64(C.sc_thread_key())
}

// fail records err in the calling thread's slot and returns its status.
func fail(err error) C.int32_t {
	lastErrors.Set(threadKey(), err.Error())
	return C.int32_t(boundary.StatusOf(err))
}

// reportPanic records a panic recovered at an export boundary as a failed
// call. Panics must never unwind into the host.
func reportPanic(r any) C.int32_t {
	logger.Error().Func(log.Panic(r)).Msg("Recovered from panic")
	return fail(fmt.Errorf("internal error: %v", r))
}

//export sc_get_last_error
func sc_get_last_error() *C.char {
	msg, ok := lastErrors.Take(threadKey())
	if !ok {
		return nil
	}
	return C.CString(msg)
}

//export sc_free_string
func sc_free_string(s *C.char) {
	if nil != s {
		C.free(unsafe.Pointer(s))
	}
}

//export sc_search
func sc_search(query *C.char) (handle C.uint64_t) {
	defer func() {
		if r := recover(); nil != r {
			reportPanic(r)
			handle = 0
		}
	}()
	lastErrors.Clear(threadKey())
	if nil == query {
		fail(fmt.Errorf("%w: query is null", boundary.ErrInvalidArgument))
		return 0
	}

	s, err := getSession()
	if nil != err {
		fail(err)
		return 0
	}

	h, err := s.Search(context.Background(), C.GoString(query))
	if nil != err {
		fail(err)
		return 0
	}

	results, _ := s.Results(h)
	cs := make([]*C.char, 0, 2*results.Len())
	for r := range results.All() {
		cs = append(cs, C.CString(r.Label), C.CString(r.Permalink))
	}
	cstringsMux.Lock()
	cstrings[h] = cs
	cstringsMux.Unlock()

	return C.uint64_t(h)
}

func resultString(h C.uint64_t, idx C.uint32_t, offset int) *C.char {
	cstringsMux.Lock()
	defer cstringsMux.Unlock()

	cs, ok := cstrings[boundary.Handle(h)]
	i := 2*int(idx) + offset
	if !ok || i >= len(cs) {
		return nil
	}
	return cs[i]
}

//export sc_search_result_count
func sc_search_result_count(h C.uint64_t) C.uint32_t {
	s, err := getSession()
	if nil != err {
		return 0
	}
	return C.uint32_t(s.ResultCount(boundary.Handle(h)))
}

//export sc_search_result_get_title
func sc_search_result_get_title(h C.uint64_t, idx C.uint32_t) *C.char {
	return resultString(h, idx, 0)
}

//export sc_search_result_get_url
func sc_search_result_get_url(h C.uint64_t, idx C.uint32_t) *C.char {
	return resultString(h, idx, 1)
}

// sc_search_result_get_duration reports milliseconds, or -1 for an unknown
// handle or index.
//
//export sc_search_result_get_duration
func sc_search_result_get_duration(h C.uint64_t, idx C.uint32_t) C.int64_t {
	s, err := getSession()
	if nil != err {
		return -1
	}
	d, ok := s.ResultDuration(boundary.Handle(h), int(idx))
	if !ok {
		return -1
	}
	return C.int64_t(d.Milliseconds())
}

//export sc_search_free
func sc_search_free(h C.uint64_t) {
	cstringsMux.Lock()
	cs := cstrings[boundary.Handle(h)]
	delete(cstrings, boundary.Handle(h))
	cstringsMux.Unlock()

	for _, v := range cs {
		C.free(unsafe.Pointer(v))
	}

	if s, err := getSession(); nil == err {
		s.ReleaseResults(boundary.Handle(h))
	}
}

//export sc_stream_track
func sc_stream_track(url *C.char, cb C.sc_pcm_callback, stop *C.bool) (status C.int32_t) {
	defer func() {
		if r := recover(); nil != r {
			status = reportPanic(r)
		}
	}()
	lastErrors.Clear(threadKey())
	if nil == url || nil == cb {
		return fail(fmt.Errorf("%w: url and callback are required", boundary.ErrInvalidArgument))
	}

	s, err := getSession()
	if nil != err {
		return fail(err)
	}

	cancel := pipeline.Never
	if nil != stop {
		cancel = pipeline.CancelFunc(func() bool { return bool(C.sc_load_flag(stop)) })
	}

	_, err = s.StreamTrack(context.Background(), C.GoString(url), cancel, func(b pcm.Block) {
		samples := b.Samples()
		if len(samples) == 0 {
			return
		}
		C.sc_invoke(cb, (*C.float)(unsafe.Pointer(&samples[0])), C.uint32_t(len(samples)))
	})
	if nil != err {
		return fail(err)
	}
	return C.int32_t(boundary.StatusOK)
}

//export sc_download_track
func sc_download_track(url *C.char) (status C.int32_t) {
	defer func() {
		if r := recover(); nil != r {
			status = reportPanic(r)
		}
	}()
	lastErrors.Clear(threadKey())
	if nil == url {
		return fail(fmt.Errorf("%w: url is null", boundary.ErrInvalidArgument))
	}

	s, err := getSession()
	if nil != err {
		return fail(err)
	}

	if _, err := s.DownloadTrack(context.Background(), C.GoString(url), ""); nil != err {
		return fail(err)
	}
	return C.int32_t(boundary.StatusOK)
}
