package enrich

import "time"

// Load запускает fetch в фоне и ждёт не дольше deadline.
//
// Успел — значение попадает в первый ответ (ok=true). Не успел — ok=false,
// а результат, когда придёт, передаётся в late (если fetch завершился без
// ошибки). Фоновая горутина не отменяется: опоздавший результат просто
// доезжает через late или отбрасывается.
func Load[T any](fetch func() (T, error), deadline time.Duration, late func(T)) (T, bool) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fetch()
		ch <- result{v, err}
	}()

	timer := time.NewTimer(deadline)
	defer timer.Stop()

	var zero T
	select {
	case r := <-ch:
		if r.err != nil {
			return zero, false
		}
		return r.v, true
	case <-timer.C:
		go func() {
			r := <-ch
			if r.err == nil && late != nil {
				late(r.v)
			}
		}()
		return zero, false
	}
}
